// Package docs holds the OpenAPI document served at /swagger/ when koiserve
// is built with -tags=swagger. Regenerate with `swag init -g cmd/koiserve/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Classify KOI records",
                "parameters": [
                    {"description": "KOI records", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PredictRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/predict/csv": {
            "post": {
                "consumes": ["text/csv", "multipart/form-data"],
                "produces": ["application/json", "text/csv"],
                "tags": ["predict"],
                "summary": "Score a CSV batch",
                "parameters": [
                    {"type": "string", "description": "CEL row filter, e.g. koi_model_snr > 10", "name": "where", "in": "query"},
                    {"type": "string", "description": "json (default) or csv", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ScoreResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/model": {
            "get": {
                "produces": ["application/json"],
                "tags": ["model"],
                "summary": "Loaded model",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelInfo"}}}
            }
        },
        "/model/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["model"],
                "summary": "Evaluation metrics of the loaded model",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelMetrics"}}}
            }
        },
        "/model/metrics/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["model"],
                "summary": "Recorded metrics of every model version",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.ModelMetrics"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/predictions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "Recent predictions",
                "parameters": [
                    {"type": "integer", "description": "max rows (default 50, max 500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.PredictionRecord"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/predictions/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "Prediction totals per label and average confidence",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictionStats"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}}
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "Expected JSON with 'features' or 'rows' key"}
            }
        },
        "types.FeatureImportance": {
            "type": "object",
            "properties": {
                "feature": {"type": "string", "example": "koi_period"},
                "importance": {"type": "number", "example": 0.234}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        },
        "types.ModelInfo": {
            "type": "object",
            "properties": {
                "classes": {"type": "array", "items": {"type": "string"}},
                "features": {"type": "array", "items": {"type": "string"}},
                "format": {"type": "string", "example": "koi-model/v1"},
                "imputation": {"type": "string", "example": "batch-mean"},
                "kind": {"type": "string", "example": "forest"},
                "path": {"type": "string"},
                "probabilities": {"type": "boolean", "example": true},
                "version": {"type": "string", "example": "kepler-rf-2024.1"}
            }
        },
        "types.ModelMetrics": {
            "type": "object",
            "properties": {
                "accuracy": {"type": "number", "example": 0.947},
                "f1_score": {"type": "number", "example": 0.906},
                "feature_importance": {"type": "array", "items": {"$ref": "#/definitions/types.FeatureImportance"}},
                "model_version": {"type": "string", "example": "v1.0.0"},
                "precision": {"type": "number", "example": 0.923},
                "recall": {"type": "number", "example": 0.891},
                "recorded_at": {"type": "integer"},
                "training_data_size": {"type": "integer", "example": 9564},
                "validation_data_size": {"type": "integer", "example": 2391}
            }
        },
        "types.PredictRequest": {
            "type": "object",
            "properties": {
                "features": {"type": "object"},
                "rows": {"type": "array", "items": {"type": "object"}}
            }
        },
        "types.PredictResponse": {
            "type": "object",
            "properties": {
                "predictions": {"type": "array", "items": {"type": "string"}, "example": ["CONFIRMED"]},
                "probabilities": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}}
            }
        },
        "types.PredictionRecord": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number", "example": 0.775},
                "created_at": {"type": "integer"},
                "features": {"type": "object", "additionalProperties": {"type": "number"}},
                "id": {"type": "integer"},
                "label": {"type": "string", "example": "CONFIRMED"},
                "model_version": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "types.PredictionStats": {
            "type": "object",
            "properties": {
                "average_confidence": {"type": "number", "example": 0.81},
                "by_label": {"type": "object", "additionalProperties": {"type": "integer"}},
                "total": {"type": "integer", "example": 42}
            }
        },
        "types.ScoreResult": {
            "type": "object",
            "properties": {
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "koiserve API",
	Description:      "KOI exoplanet disposition classifier.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
