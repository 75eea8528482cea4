// Package receipt persists a record of the last successful install so a
// later run can report what it is replacing.
package receipt
