package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"expman/internal/schema"
	"expman/internal/storage"
)

const configEditHeader = "# --- Experiment Configuration ---\n" +
	"# Save and close the editor to apply changes. Empty the file to cancel.\n"

const labelEditHeader = "# --- Label Assignment ---\n" +
	"# Set to 'true' to assign, or 'false' to unassign. Empty the file to cancel.\n\n"

var errEditCancelled = errors.New("operation cancelled")

// editorCommand resolves the text editor to launch, preferring $VISUAL,
// then $EDITOR, then vi.
func editorCommand() string {
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	if v := os.Getenv("EDITOR"); v != "" {
		return v
	}
	return "vi"
}

// editText round-trips content through the user's editor via a temp file
// and returns the edited text.
func editText(content string) (string, error) {
	path := filepath.Join(os.TempDir(), "expman-edit-"+uuid.NewString()+".yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write editor temp file: %w", err)
	}
	defer os.Remove(path)

	cmd := exec.Command(editorCommand(), path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with an error: %w", err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(edited), nil
}

// editConfigViaEditor renders doc as commented YAML, lets the user edit it,
// and re-parses until the result matches the context's expected shape. An
// emptied file cancels.
func editConfigViaEditor(ctx *schema.ExperimentContext, doc schema.Document) (schema.Document, error) {
	rendered, err := storage.MarshalYAML(doc.PlainMap(), doc.Fields(), doc.FieldComments(), ctx.Indent())
	if err != nil {
		return nil, err
	}
	text := configEditHeader + string(rendered)

	for {
		edited, err := editText(text)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(edited) == "" {
			return nil, errEditCancelled
		}

		parsed, err := parseEditedConfig(ctx, edited)
		if err == nil {
			return parsed, nil
		}
		// Surface the problem inside the editor and try again.
		text = "# [ERROR] " + strings.ReplaceAll(err.Error(), "\n", " ") + "\n\n" + edited
	}
}

func parseEditedConfig(ctx *schema.ExperimentContext, text string) (schema.Document, error) {
	data := map[string]any{}
	if err := yaml.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	var doc schema.Document
	if typed, ok := ctx.DefaultConfig().(*schema.SchemaDocument); ok {
		parsed, err := typed.Schema().NewDocument(data)
		if err != nil {
			return nil, err
		}
		doc = parsed
	} else {
		doc = schema.NewDynamicDocument(data)
	}
	if err := schema.MatchSchema(doc, ctx.DefaultConfig()); err != nil {
		return nil, err
	}
	return doc, nil
}

// editLabelMapViaEditor lets the user toggle label assignments as a YAML
// map of label to bool. Anything that is not the boolean true counts as
// unassigned. An emptied file cancels.
func editLabelMapViaEditor(ctx *schema.ExperimentContext, labelMap map[string]bool) (map[string]bool, error) {
	labels := make([]string, 0, len(labelMap))
	for label := range labelMap {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	data := make(map[string]any, len(labelMap))
	for label, assigned := range labelMap {
		data[label] = assigned
	}
	rendered, err := storage.MarshalYAML(data, labels, nil, ctx.Indent())
	if err != nil {
		return nil, err
	}

	edited, err := editText(labelEditHeader + string(rendered))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(edited) == "" {
		return nil, errEditCancelled
	}

	parsed := map[string]any{}
	if err := yaml.Unmarshal([]byte(edited), &parsed); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	out := make(map[string]bool, len(parsed))
	for label, v := range parsed {
		b, ok := v.(bool)
		out[label] = ok && b
	}
	return out, nil
}
