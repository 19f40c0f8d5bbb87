package chartdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrStudyNotFound is returned when the Pine facade has no metadata for the
// requested script id/version.
var ErrStudyNotFound = errors.New("indicator script not found")

type pineTranslateResponse struct {
	Result struct {
		MetaInfo *pineMetaInfo `json:"metaInfo"`
	} `json:"result"`
}

type pineMetaInfo struct {
	Inputs []pineInput `json:"inputs"`
	Pine   struct {
		Version string `json:"version"`
	} `json:"pine"`
}

type pineInput struct {
	ID     string      `json:"id"`
	Defval interface{} `json:"defval"`
	Type   string      `json:"type"`
}

// StudyParams fetches the script metadata from the Pine facade and builds
// the create_study parameter array for it, bound to chartSession and slot.
// The default input values from the metadata are forwarded, as is every
// "in_"-prefixed input.
func (c *client) StudyParams(scriptID, scriptVersion, chartSession, slot string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/pine-facade/translate/%s/%s", c.opts.PineBaseURL, scriptID, scriptVersion)
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(c, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrStudyNotFound, scriptID, scriptVersion)
		}
		return nil, fmt.Errorf("fetch indicator metadata: %w", err)
	}
	defer resp.Body.Close()

	var translated pineTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&translated); err != nil {
		return nil, fmt.Errorf("decode indicator metadata: %w", err)
	}
	meta := translated.Result.MetaInfo
	if meta == nil || len(meta.Inputs) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrStudyNotFound, scriptID, scriptVersion)
	}

	return buildStudyParams(scriptID, meta, chartSession, slot)
}

func buildStudyParams(scriptID string, meta *pineMetaInfo, chartSession, slot string) (json.RawMessage, error) {
	pineVersion := meta.Pine.Version
	if pineVersion == "" {
		pineVersion = "1.0"
	}

	study := map[string]interface{}{
		"text":        meta.Inputs[0].Defval,
		"pineId":      scriptID,
		"pineVersion": pineVersion,
		"pineFeatures": map[string]interface{}{
			"v": `{"indicator":1,"plot":1,"ta":1}`,
			"f": true,
			"t": "text",
		},
		"__profile": map[string]interface{}{
			"v": false,
			"f": true,
			"t": "bool",
		},
	}
	for _, in := range meta.Inputs {
		if strings.HasPrefix(in.ID, "in_") {
			study[in.ID] = map[string]interface{}{
				"v": in.Defval,
				"f": true,
				"t": in.Type,
			}
		}
	}

	params := []interface{}{
		chartSession,
		slot,
		"st1",
		"sds_1",
		"Script@tv-scripting-101!",
		study,
	}
	return json.Marshal(params)
}
