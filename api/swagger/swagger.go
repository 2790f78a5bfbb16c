package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EdunexIA Portal API",
        "description": "Enrollment checkout, payment webhook and student provisioning pipeline",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login and session management"},
        {"name": "SimplifiedEnrollments", "description": "Checkout records and conversion control"},
        {"name": "Enrollments", "description": "Formal enrollments"},
        {"name": "Contracts", "description": "Educational contracts"},
        {"name": "Courses", "description": "Course catalogue"},
        {"name": "Users", "description": "Account management"},
        {"name": "Webhooks", "description": "Payment gateway callbacks"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/simplified-enrollments": {
            "post": {
                "tags": ["SimplifiedEnrollments"],
                "summary": "Create checkout record",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"}
                }
            },
            "get": {
                "tags": ["SimplifiedEnrollments"],
                "summary": "List checkout records",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/simplified-enrollments/{id}/sync": {
            "post": {
                "tags": ["SimplifiedEnrollments"],
                "summary": "Convert one record into a formal enrollment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Converted or already converted"},
                    "400": {"description": "Record not ready"},
                    "404": {"description": "Record not found"}
                }
            }
        },
        "/simplified-enrollments/process-pending": {
            "post": {
                "tags": ["SimplifiedEnrollments"],
                "summary": "Convert every payment-confirmed record",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Batch tally"}
                }
            }
        },
        "/simplified-enrollments/recover-incomplete": {
            "post": {
                "tags": ["SimplifiedEnrollments"],
                "summary": "Repair partially converted records",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Batch tally"}
                }
            }
        },
        "/simplified-enrollments/{id}/fix-student-account": {
            "post": {
                "tags": ["SimplifiedEnrollments"],
                "summary": "Provision or relink the student account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Account repaired"}
                }
            }
        },
        "/webhook/asaas": {
            "post": {
                "tags": ["Webhooks"],
                "summary": "Asaas payment event",
                "responses": {
                    "200": {"description": "Acknowledged"},
                    "400": {"description": "Malformed payload"}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List formal enrollments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/contracts/{id}/pdf": {
            "get": {
                "tags": ["Contracts"],
                "summary": "Download contract as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"}
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
