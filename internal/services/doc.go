// Package services holds the application services used by the CLI and
// storyd: authentication, stories (with offline queueing), favorites and
// push subscriptions. Each service is constructed explicitly from its
// dependencies.
package services
