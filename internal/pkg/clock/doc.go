// Package clock supplies the current time. Manual lets tests pin and advance
// it, which the OTP expiry and cooldown rules depend on.
package clock
