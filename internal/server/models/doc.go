// Package models holds the records persisted by the intake server.
package models
