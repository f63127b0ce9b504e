// Package sanitizer normalizes client input before validation and storage.
//
// All functions are idempotent. Invalid input yields an empty string rather
// than an error, so callers decide whether an empty result is acceptable.
//
//   - Phone numbers: E.164 (+[country][number]), national numbers resolved
//     against a default region
//   - Names: collapse whitespace, trim leading/trailing spaces
package sanitizer
