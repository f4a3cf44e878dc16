// Package docs registers the OpenAPI document of the portscout scan API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "description": "Asynchronous TCP port scanning API. Submit a host and port expression, then poll the job until its report is attached.",
    "title": "portscout API",
    "license": {
      "name": "MIT",
      "url": "https://opensource.org/licenses/MIT"
    },
    "version": "1.0"
  },
  "basePath": "/api/v1",
  "schemes": ["http"],
  "securityDefinitions": {
    "ApiKeyAuth": {
      "type": "apiKey",
      "in": "header",
      "name": "Authorization",
      "description": "Bearer token: \"Bearer <PORTSCOUT_API_KEY>\""
    }
  },
  "paths": {
    "/scans": {
      "post": {
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "summary": "Create a new scan job",
        "description": "Validates the port expression, stores the job and queues it for background consumers.",
        "operationId": "createScan",
        "tags": ["Scans"],
        "security": [{"ApiKeyAuth": []}],
        "parameters": [
          {
            "description": "Scan request parameters",
            "name": "scanRequest",
            "in": "body",
            "required": true,
            "schema": {"$ref": "#/definitions/CreateScanRequest"}
          }
        ],
        "responses": {
          "202": {"description": "Scan accepted", "schema": {"$ref": "#/definitions/ScanAcceptedResponse"}},
          "400": {"description": "Invalid payload or port expression", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "401": {"description": "Missing or incorrect API key", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "500": {"description": "Failed to persist or queue the job", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/scans/{id}": {
      "get": {
        "produces": ["application/json"],
        "summary": "Get scan status and report",
        "description": "Returns the job snapshot. completed/total report progress while running; report lists open ports once completed.",
        "operationId": "getScan",
        "tags": ["Scans"],
        "security": [{"ApiKeyAuth": []}],
        "parameters": [
          {"type": "string", "format": "uuid", "description": "Scan Job ID (UUID v4)", "name": "id", "in": "path", "required": true}
        ],
        "responses": {
          "200": {"description": "Current job snapshot", "schema": {"$ref": "#/definitions/Job"}},
          "400": {"description": "Malformed job identifier", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "401": {"description": "Missing or incorrect API key", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "404": {"description": "Job does not exist or has expired", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "500": {"description": "Failed to load the job", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    }
  },
  "definitions": {
    "CreateScanRequest": {
      "type": "object",
      "required": ["host", "ports"],
      "properties": {
        "host": {"type": "string", "example": "scanme.nmap.org"},
        "ports": {"type": "string", "example": "22,80,443,8000-8100"},
        "timeout_ms": {"type": "integer", "minimum": 1, "maximum": 60000, "example": 500},
        "workers": {"type": "integer", "minimum": 1, "maximum": 1024, "example": 64},
        "banner": {"type": "boolean", "example": true}
      }
    },
    "ScanAcceptedResponse": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "format": "uuid"},
        "status": {"type": "string", "enum": ["pending"]}
      }
    },
    "ErrorResponse": {
      "type": "object",
      "properties": {
        "error": {"type": "string", "example": "job not found"}
      }
    },
    "OpenPort": {
      "type": "object",
      "properties": {
        "port": {"type": "integer", "example": 22},
        "service": {"type": "string", "example": "ssh"},
        "banner": {"type": "string", "example": "SSH-2.0-OpenSSH_9.6"}
      }
    },
    "Job": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "format": "uuid"},
        "status": {"type": "string", "enum": ["pending", "running", "completed", "failed"]},
        "host": {"type": "string"},
        "ports": {"type": "string"},
        "timeout_ms": {"type": "integer"},
        "workers": {"type": "integer"},
        "banner": {"type": "boolean"},
        "address": {"type": "string"},
        "family": {"type": "string", "enum": ["ipv4", "ipv6"]},
        "completed": {"type": "integer"},
        "total": {"type": "integer"},
        "interrupted": {"type": "boolean"},
        "report": {"type": "array", "items": {"$ref": "#/definitions/OpenPort"}},
        "created_at": {"type": "string", "format": "date-time"},
        "completed_at": {"type": "string", "format": "date-time"},
        "error": {"type": "string"}
      }
    }
  }
}
`

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

type swaggerDoc struct{}

func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}
