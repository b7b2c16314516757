// Package docs registers the OpenAPI description served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Landing information",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/accounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts by name",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Account"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/accounts/{accountId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Account timeline with insights",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "accountId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AccountWithInsights"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/accounts/{accountId}/rag": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Answer a question from the account's insights",
                "parameters": [
                    {"type": "integer", "description": "Account ID", "name": "accountId", "in": "path", "required": true},
                    {"type": "string", "description": "Question", "name": "query", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.RagResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/dashboard/csm": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Per-account risk rows, riskiest first",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.DashboardAccount"}}}}
            }
        },
        "/dashboard/risk-board": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Top accounts by average risk",
                "parameters": [{"type": "integer", "default": 5, "description": "Rows to return (1-50)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.RiskEntry"}}}}
            }
        },
        "/evaluations/metrics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["evaluations"],
                "summary": "Coverage, feedback and rule accuracy",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.EvaluationMetrics"}}}
            }
        },
        "/interactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["interactions"],
                "summary": "Ingest an interaction and analyze it",
                "parameters": [{"description": "Interaction", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateInteractionRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Insight"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/insights/recent": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Newest insights",
                "parameters": [{"type": "integer", "default": 10, "description": "Rows to return (1-50)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Insight"}}}}
            }
        },
        "/feedback": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["feedback"],
                "summary": "Rate an insight",
                "parameters": [{"description": "Feedback", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SubmitFeedbackRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Feedback"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/error"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/ws/ticket": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["live"],
                "summary": "Issue a short-lived WebSocket ticket",
                "parameters": [{"type": "integer", "description": "Account to follow; omit for all accounts", "name": "account_id", "in": "query"}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.StreamTicket"}}}
            }
        }
    },
    "definitions": {
        "error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.CreateInteractionRequest": {
            "type": "object",
            "required": ["account_id", "content"],
            "properties": {
                "account_id": {"type": "integer"},
                "contact_id": {"type": "integer"},
                "channel": {"type": "string", "default": "email"},
                "content": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "handler.SubmitFeedbackRequest": {
            "type": "object",
            "required": ["insight_id", "rating", "reason_code"],
            "properties": {
                "insight_id": {"type": "integer"},
                "rating": {"type": "boolean"},
                "reason_code": {"type": "string"},
                "comments": {"type": "string"}
            }
        },
        "model.Account": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "industry": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "model.Interaction": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "account_id": {"type": "integer"},
                "contact_id": {"type": "integer"},
                "channel": {"type": "string"},
                "content": {"type": "string"},
                "summary": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "source_file": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"},
                "insight": {"$ref": "#/definitions/model.Insight"}
            }
        },
        "model.AccountWithInsights": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "industry": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"},
                "interactions": {"type": "array", "items": {"$ref": "#/definitions/model.Interaction"}}
            }
        },
        "model.Insight": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "interaction_id": {"type": "integer"},
                "intent": {"type": "string"},
                "sentiment": {"type": "string"},
                "risk_score": {"type": "number"},
                "confidence": {"type": "number"},
                "summary": {"type": "string"},
                "keywords": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "model.Feedback": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "insight_id": {"type": "integer"},
                "user_id": {"type": "string"},
                "rating": {"type": "boolean"},
                "reason_code": {"type": "string"},
                "comments": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "model.DashboardAccount": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "account_name": {"type": "string"},
                "risk_score": {"type": "number"},
                "recent_interactions": {"type": "integer"},
                "last_interaction": {"type": "string", "format": "date-time"},
                "next_action": {"type": "string"}
            }
        },
        "model.RiskEntry": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "account_name": {"type": "string"},
                "risk_score": {"type": "number"},
                "rank": {"type": "integer"}
            }
        },
        "model.EvaluationMetrics": {
            "type": "object",
            "properties": {
                "ai_coverage": {"type": "number"},
                "feedback_rate": {"type": "number"},
                "useful_rate": {"type": "number"},
                "total_insights": {"type": "integer"},
                "avg_confidence": {"type": "number"},
                "intent_accuracy": {"type": "number"},
                "sentiment_accuracy": {"type": "number"},
                "eval_samples": {"type": "integer"},
                "performance_trend": {"type": "string"}
            }
        },
        "model.RagResponse": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "query": {"type": "string"},
                "answer": {"type": "string"},
                "supporting_insights": {"type": "array", "items": {"$ref": "#/definitions/model.Insight"}},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "model.StreamTicket": {
            "type": "object",
            "properties": {
                "ticket": {"type": "string"},
                "account_id": {"type": "integer"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "JourneyLens API",
	Description:      "Customer interaction insights: rule-based intent, sentiment and churn risk.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
