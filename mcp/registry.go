// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
)

// Version is the MCP protocol version advertised in capability discovery.
const Version = "1.0"

// ErrUnknownTool is returned when invoking a tool that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ArgumentError reports invalid tool arguments. It maps to the
// INVALID_ARGUMENTS error code at the HTTP boundary.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// NewArgumentError creates an ArgumentError with the given message.
func NewArgumentError(format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}

// Descriptor is the static metadata for one discoverable tool. Defined
// at process start and never mutated.
type Descriptor struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	InputSchema  map[string]interface{} `json:"input_schema"`
	OutputSchema map[string]interface{} `json:"output_schema"`
}

// Handler executes a tool invocation. It may return an ArgumentError for
// bad arguments; any other behavior must produce a valid result — the
// tools registered here are fallback-guaranteed.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Tool pairs a descriptor with its invocation handler.
type Tool struct {
	Descriptor Descriptor
	Handler    Handler
}

// Registry manages the registered MCP tools.
// Thread-safe for concurrent access.
type Registry struct {
	tools  map[string]*Tool
	order  []string
	mu     sync.RWMutex
	logger *log.Logger
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: log.New(os.Stdout, "[MCP_REGISTRY] ", log.LstdFlags),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool *Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Descriptor.Name
	if name == "" {
		return errors.New("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s has no handler", name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	r.logger.Printf("Registered tool: %s", name)
	return nil
}

// Descriptors returns the descriptors of all registered tools in
// registration order. This is the capability discovery operation and
// never fails.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.tools[name].Descriptor)
	}
	return descriptors
}

// Invoke dispatches an invocation to the named tool. ErrUnknownTool is
// returned for unregistered names; an ArgumentError from the handler
// passes through unchanged.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	return tool.Handler(ctx, args)
}
