// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

/*
Package mcp provides the MCP-style tool registry for FlightDeck.

# Overview

The Registry is the discovery and invocation layer exposed to external
agents. It handles:

  - Static tool descriptor registration at process start
  - Capability discovery (descriptor enumeration, never fails)
  - Invocation dispatch to the registered tool handlers

# Registering Tools

Register a tool with its descriptor and handler:

	registry := mcp.NewRegistry()
	err := registry.Register(&mcp.Tool{
	    Descriptor: mcp.Descriptor{
	        Name:        "weather_disruption_context",
	        Description: "Provides weather severity and cascading delay risk for an airport.",
	        InputSchema: inputSchema,
	        OutputSchema: outputSchema,
	    },
	    Handler: handler,
	})

# Invoking Tools

	result, err := registry.Invoke(ctx, "weather_disruption_context", args)

Handlers signal bad arguments with *ArgumentError; unregistered names
return ErrUnknownTool. Registered handlers are fallback-guaranteed and
produce a result for every valid argument set.
*/
package mcp
