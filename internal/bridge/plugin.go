// Package bridge exposes key derivation as a named host action taking a
// positional argument list, the way an embedding runtime calls into it.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TheMichaelB/scryptbridge/internal/dispatch"
	"github.com/TheMichaelB/scryptbridge/internal/events"
)

// ActionScrypt is the only action the plugin handles.
const ActionScrypt = "scrypt"

// ErrInvalidArguments is returned synchronously for a malformed argument list.
var ErrInvalidArguments = errors.New("invalid arguments")

// RawDeriver accepts loosely typed derivation requests.
type RawDeriver interface {
	DeriveRaw(ctx context.Context, password, salt interface{}, options map[string]interface{}, callback dispatch.Callback) *dispatch.Result
}

// Plugin routes host actions to the derivation service.
type Plugin struct {
	deriver RawDeriver
	logger  *events.Logger
}

// NewPlugin creates a plugin backed by deriver.
func NewPlugin(deriver RawDeriver, logger *events.Logger) *Plugin {
	return &Plugin{
		deriver: deriver,
		logger:  logger.WithField("component", "bridge"),
	}
}

// Execute runs action with args [password, salt, options]. It reports
// false for an unknown action. A missing argument or an options value that
// is not an object fails here, before anything is dispatched; every other
// problem arrives through callback.
func (p *Plugin) Execute(ctx context.Context, action string, args []interface{}, callback dispatch.Callback) (bool, error) {
	if action != ActionScrypt {
		p.logger.WithField("action", action).Debug("Ignoring unknown action")
		return false, nil
	}

	if len(args) < 3 {
		return true, fmt.Errorf("%w: %s expects 3 arguments, got %d", ErrInvalidArguments, action, len(args))
	}

	options, ok := args[2].(map[string]interface{})
	if !ok {
		return true, fmt.Errorf("%w: options must be an object, got %T", ErrInvalidArguments, args[2])
	}

	result := p.deriver.DeriveRaw(ctx, args[0], args[1], options, callback)
	p.logger.WithField("request_id", result.ID()).Debug("Dispatched scrypt action")

	return true, nil
}

// ExecuteJSON decodes a JSON argument array and calls Execute. Numbers are
// kept as json.Number.
func (p *Plugin) ExecuteJSON(ctx context.Context, action string, rawArgs []byte, callback dispatch.Callback) (bool, error) {
	if action != ActionScrypt {
		return p.Execute(ctx, action, nil, callback)
	}

	dec := json.NewDecoder(bytes.NewReader(rawArgs))
	dec.UseNumber()

	var args []interface{}
	if err := dec.Decode(&args); err != nil {
		return true, fmt.Errorf("%w: decode JSON arguments: %v", ErrInvalidArguments, err)
	}

	return p.Execute(ctx, action, args, callback)
}
