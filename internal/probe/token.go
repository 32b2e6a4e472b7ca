// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bytes"
	"encoding/json"

	aerr "github.com/sapcc/apiprobe/internal/errors"
)

// MissingToken is sent as bearer credential when the login response carries
// no token, keeping transcripts comparable with older runs.
const MissingToken = "None"

// ExtractToken reads the "token" field of a login response body. found is
// false when the field is absent or null. Non-string tokens are returned in
// their JSON form.
func ExtractToken(body []byte) (token string, found bool, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", false, &aerr.ProtocolError{Reason: "login response is not a JSON object", Body: string(body), Err: err}
	}

	raw, ok := fields["token"]
	if !ok || string(raw) == "null" {
		return "", false, nil
	}

	if err := json.Unmarshal(raw, &token); err == nil {
		return token, true, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw), true, nil
	}
	return compact.String(), true, nil
}
