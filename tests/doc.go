// Package tests holds tests that exercise the packages together. Tests that
// need the blob store emulator only run when JSONARENA_INTEGRATION is set.
package tests
