// Package payments creates and confirms Stripe Checkout sessions for the
// single-upload analysis product.
package payments
