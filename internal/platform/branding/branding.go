// Package branding centralizes user-facing product naming.
package branding

// AppName is the product name shown in user-facing surfaces.
const AppName = "Sequent"
