// Package querystudy exposes the member and team services, the generic
// entity Service and the application configuration.
package querystudy
