package main

// General API documentation for swaggo. Regenerate docs/ with
// `swag init -g cmd/koiserve/docs.go`.
//
// @title           koiserve API
// @version         1.0
// @description     Classifies Kepler Objects of Interest as CONFIRMED, CANDIDATE or FALSE POSITIVE.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
