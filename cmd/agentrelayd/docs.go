package main

// General API documentation for swaggo. Run swag against this package to
// regenerate docs.
//
// @title           agentrelay API
// @version         1.0
// @description     HTTP API for the local agent event-stream relay.
//
// @BasePath  /
//
// @schemes http
