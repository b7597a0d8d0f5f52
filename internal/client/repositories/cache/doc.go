// Package cache stores opaque key/value entries (menus, table lists and the
// like) that the terminal keeps for offline reads. Entries carry the time
// they were written and never expire on their own.
package cache
