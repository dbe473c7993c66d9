// Package docs registers the OpenAPI document of the csvrag API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "csvrag maintainers"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Returns the health status of the API",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Checks the document store and reports whether questions can be answered",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ReadyResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.ReadyResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "description": "Returns the current API version",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Get API version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VersionResponse"}}
                }
            }
        },
        "/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Accepts a multipart \"file\" field, or a JSON body naming a file on the server",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["Files"],
                "summary": "Upload a CSV file",
                "parameters": [
                    {"type": "file", "description": "CSV file", "name": "file", "in": "formData"},
                    {"description": "Server-side source", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/http.UploadPathRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.UploadResponse"}},
                    "400": {"description": "Wrong suffix, malformed CSV or invalid body", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Source path does not exist", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/files": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the ID and name of every stored file",
                "produces": ["application/json"],
                "tags": ["Files"],
                "summary": "List files",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.FileListResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/file/{file_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns a stored file with its metadata and summary",
                "produces": ["application/json"],
                "tags": ["Files"],
                "summary": "Get a file",
                "parameters": [
                    {"type": "string", "description": "File ID", "name": "file_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.FileDocument"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Permanently removes a stored file",
                "produces": ["application/json"],
                "tags": ["Files"],
                "summary": "Delete a file",
                "parameters": [
                    {"type": "string", "description": "File ID", "name": "file_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/query": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Answers a natural-language question about a stored file",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Query"],
                "summary": "Ask a question",
                "parameters": [
                    {"description": "Question", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.QueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.QueryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Completion service failure", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/query/stream": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "With stream=true the answer is written as plain text chunks as they arrive",
                "consumes": ["application/json"],
                "produces": ["text/plain", "application/json"],
                "tags": ["Query"],
                "summary": "Ask a question with a streamed answer",
                "parameters": [
                    {"description": "Question", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.StreamQueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "Answer text", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Completion service failure", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ColumnStats": {
            "type": "object",
            "properties": {
                "max": {"type": "number"},
                "mean": {"type": "number"},
                "min": {"type": "number"}
            }
        },
        "domain.FileDocument": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "file_name": {"type": "string"},
                "id": {"type": "string"},
                "metadata": {"$ref": "#/definitions/domain.Metadata"},
                "summary": {"type": "string"}
            }
        },
        "domain.FileSummary": {
            "type": "object",
            "properties": {
                "file_id": {"type": "string"},
                "file_name": {"type": "string"}
            }
        },
        "domain.Metadata": {
            "type": "object",
            "properties": {
                "column_count": {"type": "integer"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "data_types": {"type": "object", "additionalProperties": {"type": "string"}},
                "file_name": {"type": "string"},
                "numeric_columns_stats": {"type": "object", "additionalProperties": {"$ref": "#/definitions/domain.ColumnStats"}},
                "row_count": {"type": "integer"},
                "sample_rows": {"type": "array", "items": {"type": "object", "additionalProperties": {}}},
                "upload_date": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "description": "API error response",
            "type": "object",
            "properties": {
                "detail": {"type": "string", "example": "not found"},
                "error": {"type": "string", "example": "not_found"}
            }
        },
        "http.FileListResponse": {
            "description": "Stored files",
            "type": "object",
            "properties": {
                "files": {"type": "array", "items": {"$ref": "#/definitions/domain.FileSummary"}}
            }
        },
        "http.MessageResponse": {
            "description": "Confirmation message",
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "File deleted successfully"}
            }
        },
        "http.QueryRequest": {
            "description": "Question about a stored file",
            "type": "object",
            "required": ["file_id", "query"],
            "properties": {
                "file_id": {"type": "string", "example": "65a1f0c2e4b0a1b2c3d4e5f6"},
                "query": {"type": "string", "example": "What is the average amount?"}
            }
        },
        "http.QueryResponse": {
            "description": "Complete answer",
            "type": "object",
            "properties": {
                "response": {"type": "string", "example": "The average amount is 20."}
            }
        },
        "http.ReadyResponse": {
            "description": "Readiness status of the service and its dependencies",
            "type": "object",
            "properties": {
                "cache": {"type": "boolean"},
                "llm_available": {"type": "boolean"},
                "status": {"type": "string", "example": "ready"},
                "store": {"type": "string", "example": "ok"},
                "store_backend": {"type": "string", "example": "mongo"}
            }
        },
        "http.StatusResponse": {
            "description": "Simple status response",
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"}
            }
        },
        "http.StreamQueryRequest": {
            "description": "Question about a stored file with optional streaming",
            "type": "object",
            "required": ["file_id", "query"],
            "properties": {
                "file_id": {"type": "string", "example": "65a1f0c2e4b0a1b2c3d4e5f6"},
                "query": {"type": "string", "example": "Summarize the data"},
                "stream": {"type": "boolean", "example": true}
            }
        },
        "http.UploadPathRequest": {
            "description": "Upload from a server-side path",
            "type": "object",
            "required": ["source_type"],
            "properties": {
                "file_path": {"type": "string", "example": "data/sales.csv"},
                "source_type": {"type": "string", "example": "project"}
            }
        },
        "http.UploadResponse": {
            "description": "Result of a successful upload",
            "type": "object",
            "properties": {
                "file_id": {"type": "string", "example": "65a1f0c2e4b0a1b2c3d4e5f6"},
                "message": {"type": "string", "example": "Upload successful"}
            }
        },
        "http.VersionResponse": {
            "description": "API version response",
            "type": "object",
            "properties": {
                "version": {"type": "string", "example": "1.0.0"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "csvrag API",
	Description:      "Upload CSV files and ask natural-language questions about them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
