package api

import _ "embed"

// SwaggerDoc describes the REST surface served under /api/v1.
//
//go:embed skysailor.swagger.json
var SwaggerDoc []byte
