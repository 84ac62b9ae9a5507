package species

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/germplasm-cli/internal/inference"
	"github.com/sells-group/germplasm-cli/internal/model"
)

const remotePrompt = `Identify the plant species described below.

Plant name: %s
Variety: %s

Respond with a single JSON object and nothing else, using exactly these keys:
{"latin_name": "<Latin binomial>", "common_name": "<common English name>", "variety_name": "<variety or empty string>"}`

// Remote resolves species through the inference service. Its answers are not
// stable across runs; callers wrap it with WithFallback.
type Remote struct {
	inferer   inference.Inferer
	maxTokens int64
}

// NewRemote creates a Remote resolver.
func NewRemote(inferer inference.Inferer, maxTokens int64) *Remote {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return &Remote{inferer: inferer, maxTokens: maxTokens}
}

// Resolve implements Resolver. Any call, decode or validation failure is
// returned as an error.
func (r *Remote) Resolve(ctx context.Context, plantName, varietyName string) (model.Species, error) {
	prompt := fmt.Sprintf(remotePrompt, strings.TrimSpace(plantName), strings.TrimSpace(varietyName))

	text, err := r.inferer.Infer(ctx, prompt, r.maxTokens)
	if err != nil {
		return model.Species{}, eris.Wrap(err, "species: remote inference")
	}

	obj, err := inference.DecodeObject(text)
	if err != nil {
		return model.Species{}, eris.Wrap(err, "species: decode response")
	}

	latin, err := stringKey(obj, "latin_name", true)
	if err != nil {
		return model.Species{}, err
	}
	common, err := stringKey(obj, "common_name", true)
	if err != nil {
		return model.Species{}, err
	}
	variety, err := stringKey(obj, "variety_name", false)
	if err != nil {
		return model.Species{}, err
	}
	if variety == "" {
		variety = varietyName
	}

	return model.Species{
		LatinName:   latin,
		CommonName:  common,
		VarietyName: variety,
	}, nil
}

func stringKey(obj map[string]any, key string, required bool) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return "", eris.Errorf("species: response missing %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", eris.Errorf("species: response key %q is %T, want string", key, v)
	}
	s = strings.TrimSpace(s)
	if s == "" && required {
		return "", eris.Errorf("species: response key %q is empty", key)
	}
	return s, nil
}
