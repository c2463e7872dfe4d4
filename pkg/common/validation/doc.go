// Package validation provides common validation utilities for configuration
// and call arguments across cadence packages.
//
// Every validator returns nil or a *errors.ValidationError, which unwraps to
// errors.ErrInvalidConfiguration.
package validation
