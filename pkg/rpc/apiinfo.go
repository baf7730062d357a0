package rpc

import (
	"fmt"
)

// Version identifies this client in the handshake announcement.
type Version struct {
	Major int
	Minor int
	Patch int
}

// APIInfo is the parsed result of the nvim_get_api_info handshake request.
type APIInfo struct {
	Channel  int
	Types    map[string]int // remote-object kind name -> extension type code
	Metadata map[string]any // full raw metadata map
}

// requiredTypes are the remote-object kinds this client must be able to
// decode. A peer that does not advertise all of them cannot be spoken to.
var requiredTypes = []string{"Buffer", "Window", "Tabpage"}

// parseAPIInfo validates the handshake response shape: a two-element array
// of channel id and metadata, where metadata carries a types map (each
// entry holding an integer id) and an error_types map. Anything malformed
// is a ProtocolError; the client cannot safely proceed on a peer whose
// metadata it cannot read.
func parseAPIInfo(result any) (*APIInfo, error) {
	pair, ok := result.([]any)
	if !ok || len(pair) != 2 {
		return nil, &ProtocolError{Reason: fmt.Sprintf("api info is %T, want [channel, metadata]", result)}
	}

	channel, ok := pair[0].(int64)
	if !ok {
		return nil, &ProtocolError{Reason: fmt.Sprintf("api info channel id is %T, want integer", pair[0])}
	}

	metadata, ok := pair[1].(map[string]any)
	if !ok {
		return nil, &ProtocolError{Reason: fmt.Sprintf("api info metadata is %T, want map", pair[1])}
	}

	rawTypes, ok := metadata["types"].(map[string]any)
	if !ok {
		return nil, &ProtocolError{Reason: "api info metadata is missing the types map"}
	}

	if _, ok := metadata["error_types"].(map[string]any); !ok {
		return nil, &ProtocolError{Reason: "api info metadata is missing the error_types map"}
	}

	types := make(map[string]int, len(rawTypes))
	for name, raw := range rawTypes {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, &ProtocolError{Reason: fmt.Sprintf("type %q entry is %T, want map", name, raw)}
		}
		id, ok := entry["id"].(int64)
		if !ok {
			return nil, &ProtocolError{Reason: fmt.Sprintf("type %q has no integer id", name)}
		}
		types[name] = int(id)
	}

	for _, name := range requiredTypes {
		if _, ok := types[name]; !ok {
			return nil, &ProtocolError{Reason: fmt.Sprintf("api info types map is missing %q", name)}
		}
	}

	return &APIInfo{
		Channel:  int(channel),
		Types:    types,
		Metadata: metadata,
	}, nil
}

// registerExtTypes binds the type codes learned from the handshake to the
// wrapper constructors for the kinds this client decodes.
func registerExtTypes(codec *Codec, info *APIInfo) error {
	ctors := map[string]func(code int8, data []byte) any{
		"Buffer": func(code int8, data []byte) any {
			return Buffer{newExt(code, data)}
		},
		"Window": func(code int8, data []byte) any {
			return Window{newExt(code, data)}
		},
		"Tabpage": func(code int8, data []byte) any {
			return Tabpage{newExt(code, data)}
		},
	}

	for _, name := range requiredTypes {
		code := int8(info.Types[name])
		ctor := ctors[name]
		if err := codec.RegisterExt(code, func(data []byte) any {
			return ctor(code, data)
		}); err != nil {
			return err
		}
	}
	return nil
}
