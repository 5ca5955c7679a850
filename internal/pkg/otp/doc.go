// Package otp generates one-time login codes.
//
// A code is drawn uniformly, with repetition, from the alphabet of its
// CodeType. Codes are not unique across requests.
package otp
