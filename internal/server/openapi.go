package server

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// apiSpec is the published contract for the lookup API. It is validated at
// startup and served verbatim at /openapi.json.
const apiSpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "phpnav lookup API",
    "description": "Project-wide PHP symbol resolution over HTTP.",
    "version": "1.0.0"
  },
  "paths": {
    "/lookup": {
      "get": {
        "summary": "Resolve a class, interface or trait name",
        "parameters": [
          {
            "name": "name",
            "in": "query",
            "required": true,
            "schema": {"type": "string"},
            "description": "Simple or fully-qualified name; surrounding whitespace is ignored."
          },
          {
            "name": "import",
            "in": "query",
            "required": false,
            "schema": {"type": "string"},
            "description": "Path of the file to compute a use-statement insertion for."
          }
        ],
        "responses": {
          "200": {
            "description": "Declaration found",
            "content": {
              "application/json": {
                "schema": {"$ref": "#/components/schemas/LookupResult"}
              }
            }
          },
          "404": {
            "description": "No declaration matches the query",
            "content": {
              "application/json": {
                "schema": {"$ref": "#/components/schemas/Error"}
              }
            }
          }
        }
      }
    },
    "/refresh": {
      "post": {
        "summary": "Rebuild the declaration index",
        "responses": {
          "200": {
            "description": "Index rebuilt",
            "content": {
              "application/json": {
                "schema": {"$ref": "#/components/schemas/RefreshResult"}
              }
            }
          }
        }
      }
    },
    "/health": {
      "get": {
        "summary": "Service health",
        "responses": {
          "200": {"description": "Service healthy"},
          "503": {"description": "Service degraded"}
        }
      }
    }
  },
  "components": {
    "schemas": {
      "LookupResult": {
        "type": "object",
        "required": ["requestId", "fqn", "kind", "path", "offset"],
        "properties": {
          "requestId": {"type": "string", "format": "uuid"},
          "fqn": {"type": "string"},
          "kind": {"type": "string", "enum": ["class", "interface", "trait"]},
          "path": {"type": "string"},
          "offset": {"type": "integer"},
          "insertion": {
            "type": "object",
            "properties": {
              "offset": {"type": "integer"},
              "text": {"type": "string"}
            }
          }
        }
      },
      "RefreshResult": {
        "type": "object",
        "properties": {
          "requestId": {"type": "string", "format": "uuid"},
          "declarations": {"type": "integer"}
        }
      },
      "Error": {
        "type": "object",
        "properties": {
          "requestId": {"type": "string", "format": "uuid"},
          "error": {"type": "string"}
        }
      }
    }
  }
}`

func loadAPISpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(apiSpec))
	if err != nil {
		return nil, fmt.Errorf("load embedded openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate embedded openapi spec: %w", err)
	}
	return doc, nil
}
