// Package storepg persists metamemory.Item records through GORM in the
// metamemory_items table, so they survive process restarts.
package storepg
