// Package jwt issues and verifies HS512 access tokens for users who finished
// a login through the token API, and carries verified claims in a context.
package jwt
