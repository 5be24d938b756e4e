// Package jsonvalue provides a tagged-union representation of arbitrary JSON.
//
// Upstream completion payloads have no guaranteed schema, so the proxy decodes
// them into a Value and probes fields with total lookups instead of mapping
// them onto Go structs:
//
//	v, err := jsonvalue.Parse(body)
//	if err != nil {
//	    return err
//	}
//	text, ok := v.Lookup(jsonvalue.Key("output"), jsonvalue.Key("text"))
//
// Lookup never panics. Objects keep their member order, and marshalling a
// parsed Value reproduces the input in compact form with number literals kept
// as written.
package jsonvalue
