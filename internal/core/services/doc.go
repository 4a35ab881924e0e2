// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never branch on provider identity; every backend is reached
// through a driven port selected at startup.
package services
