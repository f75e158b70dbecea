// Package logging constructs the loggers used throughout the tool.
//
// Components never reference a package-level logger; each one receives a
// *zap.SugaredLogger at construction so it can be tested with a no-op
// logger and so log configuration stays in one place.
package logging
