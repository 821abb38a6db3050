package profile

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

//go:embed default.cue
var defaultCUE string

// Load builds the tool profile: the embedded schema unified with the
// embedded defaults, then the optional overlay file applied on top. An
// overlay entry under a known name overrides just the fields it states;
// an entry under a new name adds a tool, with the schema filling the
// unstated fields. Overlay entries are checked against the schema, so
// an unknown kind or a misspelled field fails with a CUE error naming
// the offending entry.
//
// An empty overlayPath loads the defaults alone.
func Load(overlayPath string) (*Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling profile schema: %w", err)
	}

	defaults := ctx.CompileString(defaultCUE, cue.Filename("default.cue"))
	if err := defaults.Err(); err != nil {
		return nil, fmt.Errorf("compiling default profile: %w", err)
	}

	val := schema.Unify(defaults)

	tools := val.LookupPath(cue.ParsePath("profile.tools"))
	if !tools.Exists() {
		return nil, fmt.Errorf("profile has no tools table")
	}
	if err := tools.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}

	var byName map[string]Tool
	if err := tools.Decode(&byName); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	if overlayPath != "" {
		if err := applyOverlay(ctx, schema, byName, overlayPath); err != nil {
			return nil, err
		}
	}

	p := &Profile{Tools: make([]Tool, 0, len(byName))}
	for _, t := range byName {
		p.Tools = append(p.Tools, t)
	}
	sort.Slice(p.Tools, func(i, j int) bool { return p.Tools[i].Name < p.Tools[j].Name })

	return p, nil
}

// applyOverlay merges the overlay file's tool entries into byName.
func applyOverlay(ctx *cue.Context, schema cue.Value, byName map[string]Tool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading profile overlay: %w", err)
	}
	overlay := ctx.CompileString(string(data), cue.Filename(path))
	if err := overlay.Err(); err != nil {
		return fmt.Errorf("compiling profile overlay: %w", err)
	}

	entries := overlay.LookupPath(cue.ParsePath("profile.tools"))
	if !entries.Exists() {
		return fmt.Errorf("profile overlay %s has no tools table", path)
	}
	iter, err := entries.Fields()
	if err != nil {
		return fmt.Errorf("iterating overlay tools: %w", err)
	}

	toolSchema := schema.LookupPath(cue.ParsePath("#Tool"))

	for iter.Next() {
		name := iter.Label()
		entry := iter.Value()

		// The schema is closed, so this rejects misspelled fields,
		// mistyped values, and unknown kinds in one place.
		checked := toolSchema.Unify(entry)

		existing, ok := byName[name]
		if ok {
			if err := checked.Validate(); err != nil {
				return fmt.Errorf("overlay tool %s: %w", name, err)
			}
			tool := existing
			if err := mergeTool(&tool, entry); err != nil {
				return fmt.Errorf("overlay tool %s: %w", name, err)
			}
			byName[name] = tool
			continue
		}

		// A new tool must be complete once the schema defaults are in.
		merged := checked.FillPath(cue.ParsePath("name"), name)
		if err := merged.Validate(cue.Concrete(true)); err != nil {
			return fmt.Errorf("overlay tool %s: %w", name, err)
		}
		var tool Tool
		if err := merged.Decode(&tool); err != nil {
			return fmt.Errorf("overlay tool %s: %w", name, err)
		}
		byName[name] = tool
	}
	return nil
}

// mergeTool copies the fields an overlay entry states onto tool,
// leaving the rest as loaded.
func mergeTool(tool *Tool, entry cue.Value) error {
	fields, err := entry.Fields()
	if err != nil {
		return err
	}
	for fields.Next() {
		v := fields.Value()
		var decodeErr error
		switch field := fields.Label(); field {
		case "kind":
			decodeErr = v.Decode(&tool.Kind)
		case "match":
			decodeErr = v.Decode(&tool.Match)
		case "inputExts":
			decodeErr = v.Decode(&tool.InputExts)
		case "outputStyle":
			decodeErr = v.Decode(&tool.OutputStyle)
		case "outputFlag":
			decodeErr = v.Decode(&tool.OutputFlag)
		case "outputExts":
			decodeErr = v.Decode(&tool.OutputExts)
		case "name":
			return fmt.Errorf("name is set from the entry key")
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		if decodeErr != nil {
			return fmt.Errorf("field %s: %w", fields.Label(), decodeErr)
		}
	}
	return nil
}
