// Package logger provides structured logging for the gateway built on
// rs/zerolog. A single global logger is initialized from config at startup;
// components derive tagged sub-loggers via WithComponent.
package logger
