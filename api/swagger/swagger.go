package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Matrícula API",
        "description": "Checkout and back-office API for the math course enrollment",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Enrollment", "description": "Public checkout flow"},
        {"name": "Auth", "description": "Admin authentication"},
        {"name": "Admin", "description": "Back-office enrollment management"}
    ],
    "paths": {
        "/enrollment/register": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Submit an enrollment and charge the selected payment method",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Charge created", "schema": {"$ref": "#/definitions/RegisterResponse"}},
                    "200": {"description": "Existing payment resumed", "schema": {"$ref": "#/definitions/RegisterResponse"}},
                    "400": {"description": "Invalid data or payment rejected"},
                    "409": {"description": "Enrollment already confirmed"},
                    "500": {"description": "Payment processor unavailable"}
                }
            }
        },
        "/enrollment/status/{paymentId}": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Poll a payment reference and reconcile the enrollment",
                "parameters": [
                    {"name": "paymentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StatusResponse"}},
                    "500": {"description": "Payment processor unavailable"}
                }
            }
        },
        "/enrollment/existing": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Look up a prior enrollment by e-mail or CPF",
                "parameters": [
                    {"name": "email", "in": "query", "type": "string"},
                    {"name": "cpf", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ExistingResponse"}},
                    "400": {"description": "Missing identity"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate an admin user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/admin/enrollments": {
            "get": {
                "tags": ["Admin"],
                "summary": "List enrollments",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "modality", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "sort_order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/admin/enrollments/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export every enrollment as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "Document"},
                    "400": {"description": "Unknown format"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "cpf", "modality", "paymentMethod"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "cpf": {"type": "string"},
                "phone": {"type": "string"},
                "modality": {"type": "string", "enum": ["COM_MATERIAL", "SEM_MATERIAL"]},
                "paymentMethod": {"type": "string", "enum": ["cartao", "boleto", "pix"]},
                "installments": {"type": "integer"},
                "token": {"type": "string"},
                "paymentMethodId": {"type": "string"},
                "coupon": {"type": "string"}
            }
        },
        "RegisterResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "resume": {"type": "boolean"},
                "paymentId": {"type": "string"},
                "status": {"type": "string"},
                "valor": {"type": "number"},
                "message": {"type": "string"},
                "payment": {"$ref": "#/definitions/PixData"}
            }
        },
        "PixData": {
            "type": "object",
            "properties": {
                "qrCodeBase64": {"type": "string"},
                "qrCodeCopyPaste": {"type": "string"}
            }
        },
        "StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ExistingResponse": {
            "type": "object",
            "properties": {
                "exists": {"type": "boolean"},
                "status": {"type": "string"},
                "modality": {"type": "string"},
                "paymentId": {"type": "string"},
                "amount": {"type": "number"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
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
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
