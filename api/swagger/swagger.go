package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Query Engine API",
        "description": "Query lifecycle and feedback engine for the student Q&A app",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login, registration and profile"},
        {"name": "Queries", "description": "Question intake, answering and projections"},
        {"name": "Ratings", "description": "Per-query ratings and teacher summaries"},
        {"name": "Notifications", "description": "User notification feed"},
        {"name": "Courses", "description": "Course catalogue"},
        {"name": "Admin", "description": "Account and catalogue administration"},
        {"name": "Export", "description": "Teacher query-log downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "409": {"description": "Email taken", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}
                }
            }
        },
        "/queries": {
            "post": {
                "tags": ["Queries"],
                "summary": "Submit a question",
                "description": "Runs moderation, subject relevance and duplicate matching. A duplicate returns the matched answered query instead of creating a new one.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitQueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "New pending query, or a matched-duplicate envelope", "schema": {"$ref": "#/definitions/Query"}},
                    "422": {"description": "Rejected by moderation or subject relevance", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/queries/answer/{id}": {
            "patch": {
                "tags": ["Queries"],
                "summary": "Answer a query",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerQueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Query"}},
                    "403": {"description": "Not the assigned teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Unknown query", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/queries/rating/{id}": {
            "get": {
                "tags": ["Ratings"],
                "summary": "Rating attached to a query",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"rating": {"type": "integer"}}}}
                }
            }
        },
        "/queries/rate": {
            "post": {
                "tags": ["Ratings"],
                "summary": "Rate an answered query",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TeacherRatingSummary"}},
                    "409": {"description": "Query not answered yet", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/queries/teacher/{id}/rating": {
            "get": {
                "tags": ["Ratings"],
                "summary": "Teacher rating summary",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TeacherRatingSummary"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/queries/course/{id}/faq": {
            "get": {
                "tags": ["Queries"],
                "summary": "Course FAQ",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/queries/faq/all": {
            "get": {
                "tags": ["Queries"],
                "summary": "Global FAQ",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/queries/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "My notifications",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/queries/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Belongs to another user", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/queries/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Download my query log",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "name", "roll"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "roll": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "user": {"$ref": "#/definitions/User"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "roll": {"type": "string"},
                "role": {"type": "string"},
                "average_rating": {"type": "number"},
                "total_ratings": {"type": "integer"}
            }
        },
        "SubmitQueryRequest": {
            "type": "object",
            "required": ["course_id", "question"],
            "properties": {
                "course_id": {"type": "string"},
                "question": {"type": "string"}
            }
        },
        "AnswerQueryRequest": {
            "type": "object",
            "required": ["answer"],
            "properties": {
                "answer": {"type": "string"}
            }
        },
        "Query": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "course_id": {"type": "string"},
                "course_name": {"type": "string"},
                "teacher_id": {"type": "string"},
                "student_id": {"type": "string"},
                "student_name": {"type": "string"},
                "student_roll": {"type": "string"},
                "question": {"type": "string"},
                "answer": {"type": "string"},
                "answered": {"type": "boolean"},
                "created_at": {"type": "string"},
                "answered_at": {"type": "string"}
            }
        },
        "RateRequest": {
            "type": "object",
            "required": ["query_id", "teacher_id", "rating"],
            "properties": {
                "query_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "rating": {"type": "integer", "minimum": 1, "maximum": 5}
            }
        },
        "Rating": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "query_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "student_id": {"type": "string"},
                "rating": {"type": "integer"}
            }
        },
        "TeacherRatingSummary": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "average_rating": {"type": "number"},
                "total_ratings": {"type": "integer"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "code": {"type": "string"},
                "moderation": {"type": "boolean"},
                "subject_invalid": {"type": "boolean"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
