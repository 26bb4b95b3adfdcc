package rules

import (
	"encoding/json"
	"net/url"
)

// policyStatement is the subset of an IAM policy statement the rules inspect.
type policyStatement struct {
	Effect    string                    `json:"Effect"`
	Condition map[string]map[string]any `json:"Condition,omitempty"`
}

// policyStatements parses a JSON policy document, which may be URL-encoded,
// and returns its statements. A single statement object is accepted in place
// of an array. Unparseable documents yield no statements.
func policyStatements(doc string) []policyStatement {
	if doc == "" {
		return nil
	}
	if decoded, err := url.PathUnescape(doc); err == nil {
		doc = decoded
	}
	var raw struct {
		Statement json.RawMessage `json:"Statement"`
	}
	if err := json.Unmarshal([]byte(doc), &raw); err != nil || len(raw.Statement) == 0 {
		return nil
	}
	var many []policyStatement
	if err := json.Unmarshal(raw.Statement, &many); err == nil {
		return many
	}
	var one policyStatement
	if err := json.Unmarshal(raw.Statement, &one); err == nil {
		return []policyStatement{one}
	}
	return nil
}

// hasIPCondition reports whether any statement restricts callers by source IP.
func hasIPCondition(statements []policyStatement) bool {
	for _, s := range statements {
		if len(s.Condition["IpAddress"]) > 0 {
			return true
		}
	}
	return false
}
