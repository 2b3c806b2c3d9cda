// Package docs registra en swag la especificación OpenAPI de la API (servida en /docs).
// Mantener alineado con los comentarios @Router de internal/interfaces/http.
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
		"/api/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Iniciar sesión",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.LoginResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/health/db": {
			"get": {
				"tags": [
					"health"
				],
				"summary": "Salud de la base de datos",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.DBHealthResponse"
						}
					}
				}
			}
		},
		"/api/auth/me": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Usuario autenticado",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.UserResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/users": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Crear usuario (admin)",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateUserRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.UserResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/dashboard/stats": {
			"get": {
				"tags": [
					"dashboard"
				],
				"summary": "Contadores del tablero",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.DashboardStatsDTO"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/collections": {
			"get": {
				"tags": [
					"dashboard"
				],
				"summary": "Clientes a cobrar",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.CollectionItem"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/status/refresh": {
			"post": {
				"tags": [
					"dashboard"
				],
				"summary": "Recalcular estados (admin)",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.RefreshResult"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers": {
			"get": {
				"tags": [
					"customers"
				],
				"summary": "Listar clientes",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.CustomerResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"customers"
				],
				"summary": "Crear cliente",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateCustomerRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.CustomerResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers/{id}": {
			"get": {
				"tags": [
					"customers"
				],
				"summary": "Detalle de cliente",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CustomerResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"tags": [
					"customers"
				],
				"summary": "Actualizar cliente",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateCustomerRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CustomerResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"customers"
				],
				"summary": "Borrado lógico de cliente (admin)",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers/{id}/status": {
			"get": {
				"tags": [
					"customers"
				],
				"summary": "Estado derivado del cliente",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.StatusResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/agreements": {
			"post": {
				"tags": [
					"agreements"
				],
				"summary": "Crear convenio",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateAgreementRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.AgreementResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"agreements"
				],
				"summary": "Convenios de un cliente",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.AgreementResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/agreements/{id}/deactivate": {
			"patch": {
				"tags": [
					"agreements"
				],
				"summary": "Desactivar convenio",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.AgreementResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/billing/pending": {
			"get": {
				"tags": [
					"periods"
				],
				"summary": "Periodos pendientes de facturar",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.PendingBillingItem"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/periods": {
			"post": {
				"tags": [
					"periods"
				],
				"summary": "Crear periodo",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreatePeriodRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.PeriodMutationResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/periods/{id}": {
			"patch": {
				"tags": [
					"periods"
				],
				"summary": "Actualizar periodo",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PeriodMutationResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"periods"
				],
				"summary": "Eliminar periodo",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.StatusResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/periods/{id}/renew": {
			"post": {
				"tags": [
					"periods"
				],
				"summary": "Renovar periodo",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.PeriodMutationResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/payments": {
			"get": {
				"tags": [
					"payments"
				],
				"summary": "Listar pagos",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.PaymentResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"payments"
				],
				"summary": "Registrar pago",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreatePaymentRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.PaymentMutationResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/invoices": {
			"get": {
				"tags": [
					"invoices"
				],
				"summary": "Listar facturas",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.InvoiceResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"invoices"
				],
				"summary": "Crear factura de un periodo",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateInvoiceRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.InvoiceResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/invoices/{id}/mark-generated": {
			"patch": {
				"tags": [
					"invoices"
				],
				"summary": "Marcar factura generada",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.MarkGeneratedRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.InvoiceResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/invoices/{id}/mark-paid": {
			"patch": {
				"tags": [
					"invoices"
				],
				"summary": "Marcar factura pagada",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.MarkPaidRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.InvoiceResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/invoices/{id}/pdf": {
			"get": {
				"tags": [
					"invoices"
				],
				"summary": "Descargar PDF",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "file"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/invoices/{id}/xml": {
			"get": {
				"tags": [
					"invoices"
				],
				"summary": "Descargar XML canónico",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "file"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/plans": {
			"get": {
				"tags": [
					"plans"
				],
				"summary": "Listar planes",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.PlanResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"plans"
				],
				"summary": "Crear plan",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.PlanResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/plans/{id}": {
			"get": {
				"tags": [
					"plans"
				],
				"summary": "Detalle de plan",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PlanResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"tags": [
					"plans"
				],
				"summary": "Actualizar plan",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PlanResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/plans/{id}/pricing": {
			"post": {
				"tags": [
					"plans"
				],
				"summary": "Agregar precio",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.PlanResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/plans/{id}/pricing/{pricingId}": {
			"delete": {
				"tags": [
					"plans"
				],
				"summary": "Eliminar precio",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "pricingId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PlanResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/plans/{id}/usage-limits": {
			"post": {
				"tags": [
					"plans"
				],
				"summary": "Agregar límite de uso",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.PlanResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/plans/{id}/usage-limits/{limitId}": {
			"delete": {
				"tags": [
					"plans"
				],
				"summary": "Eliminar límite de uso",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "limitId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PlanResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"dto.ErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"dto.LoginRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"dto.LoginResponse": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/dto.UserResponse"
				}
			}
		},
		"dto.UserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"dto.CreateUserRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"role": {
					"type": "string"
				}
			}
		},
		"dto.DBHealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"user_count": {
					"type": "integer"
				}
			}
		},
		"dto.CreateCustomerRequest": {
			"type": "object",
			"properties": {
				"commercial_name": {
					"type": "string"
				},
				"alias": {
					"type": "string"
				},
				"admin_contact": {
					"type": "string"
				},
				"billing_contact": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				},
				"legal_name": {
					"type": "string"
				},
				"rfc": {
					"type": "string"
				},
				"fiscal_regime": {
					"type": "string"
				},
				"cfdi_usage": {
					"type": "string"
				},
				"billing_email": {
					"type": "string"
				},
				"invoice_required": {
					"type": "boolean"
				}
			}
		},
		"dto.StatusResponse": {
			"type": "object",
			"properties": {
				"financial_status": {
					"type": "string"
				},
				"operational_status": {
					"type": "string"
				},
				"relationship_status": {
					"type": "string"
				},
				"days_overdue": {
					"type": "integer"
				},
				"next_payment_due": {
					"type": "string"
				}
			}
		},
		"dto.CustomerResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"commercial_name": {
					"type": "string"
				},
				"alias": {
					"type": "string"
				},
				"legal_name": {
					"type": "string"
				},
				"rfc": {
					"type": "string"
				},
				"billing_email": {
					"type": "string"
				},
				"operational_status": {
					"type": "string"
				},
				"relationship_status": {
					"type": "string"
				},
				"invoice_required": {
					"type": "boolean"
				},
				"status": {
					"$ref": "#/definitions/dto.StatusResponse"
				}
			}
		},
		"dto.CollectionItem": {
			"type": "object",
			"properties": {
				"customer_id": {
					"type": "string"
				},
				"commercial_name": {
					"type": "string"
				},
				"status": {
					"$ref": "#/definitions/dto.StatusResponse"
				}
			}
		},
		"dto.RefreshResult": {
			"type": "object",
			"properties": {
				"expired": {
					"type": "integer"
				},
				"expiring": {
					"type": "integer"
				},
				"customers": {
					"type": "integer"
				},
				"drifted": {
					"type": "integer"
				}
			}
		},
		"dto.CreateAgreementRequest": {
			"type": "object",
			"properties": {
				"customer_id": {
					"type": "string"
				},
				"subtotal_amount": {
					"type": "string"
				},
				"currency": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"billing_cycle": {
					"type": "string"
				},
				"customer_type": {
					"type": "string"
				},
				"special_rules": {
					"type": "string"
				},
				"start_date": {
					"type": "string"
				},
				"renewal_day": {
					"type": "integer"
				},
				"grace_period_days": {
					"type": "integer"
				}
			}
		},
		"dto.AgreementResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"customer_id": {
					"type": "string"
				},
				"subtotal_amount": {
					"type": "string"
				},
				"currency": {
					"type": "string"
				},
				"billing_cycle": {
					"type": "string"
				},
				"start_date": {
					"type": "string"
				},
				"end_date": {
					"type": "string"
				},
				"renewal_day": {
					"type": "integer"
				},
				"grace_period_days": {
					"type": "integer"
				},
				"is_active": {
					"type": "boolean"
				}
			}
		},
		"dto.CreatePeriodRequest": {
			"type": "object",
			"properties": {
				"customer_id": {
					"type": "string"
				},
				"start_date": {
					"type": "string"
				},
				"end_date": {
					"type": "string"
				},
				"subtotal_amount": {
					"type": "string"
				},
				"currency": {
					"type": "string"
				},
				"origin": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				},
				"suggested_invoice_date": {
					"type": "string"
				},
				"plan_id": {
					"type": "string"
				},
				"frequency": {
					"type": "string"
				},
				"quantity": {
					"type": "integer"
				}
			}
		},
		"dto.PeriodResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"customer_id": {
					"type": "string"
				},
				"start_date": {
					"type": "string"
				},
				"end_date": {
					"type": "string"
				},
				"subtotal_amount": {
					"type": "string"
				},
				"currency": {
					"type": "string"
				},
				"origin": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"billing_status": {
					"type": "string"
				},
				"paid": {
					"type": "boolean"
				}
			}
		},
		"dto.PeriodMutationResponse": {
			"type": "object",
			"properties": {
				"period": {
					"$ref": "#/definitions/dto.PeriodResponse"
				},
				"status": {
					"$ref": "#/definitions/dto.StatusResponse"
				}
			}
		},
		"dto.CreatePaymentRequest": {
			"type": "object",
			"properties": {
				"customer_id": {
					"type": "string"
				},
				"payment_date": {
					"type": "string"
				},
				"amount": {
					"type": "string"
				},
				"method": {
					"type": "string"
				},
				"reference": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				},
				"service_period_ids": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"dto.PaymentResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"customer_id": {
					"type": "string"
				},
				"amount": {
					"type": "string"
				},
				"currency": {
					"type": "string"
				},
				"payment_date": {
					"type": "string"
				},
				"method": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"invoice_id": {
					"type": "string"
				},
				"period_ids": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"dto.PaymentMutationResponse": {
			"type": "object",
			"properties": {
				"payment": {
					"$ref": "#/definitions/dto.PaymentResponse"
				},
				"created_periods": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.PeriodResponse"
					}
				},
				"status": {
					"$ref": "#/definitions/dto.StatusResponse"
				}
			}
		},
		"dto.CreateInvoiceRequest": {
			"type": "object",
			"properties": {
				"service_period_id": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			}
		},
		"dto.MarkGeneratedRequest": {
			"type": "object",
			"properties": {
				"invoice_number": {
					"type": "string"
				},
				"invoice_url": {
					"type": "string"
				},
				"payment_id": {
					"type": "string"
				}
			}
		},
		"dto.MarkPaidRequest": {
			"type": "object",
			"properties": {
				"payment_id": {
					"type": "string"
				}
			}
		},
		"dto.InvoiceResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"customer_id": {
					"type": "string"
				},
				"service_period_id": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"subtotal_amount": {
					"type": "string"
				},
				"tax_amount": {
					"type": "string"
				},
				"total_amount": {
					"type": "string"
				},
				"currency": {
					"type": "string"
				},
				"invoice_number": {
					"type": "string"
				},
				"generated_date": {
					"type": "string"
				},
				"paid_date": {
					"type": "string"
				}
			}
		},
		"dto.PendingBillingItem": {
			"type": "object",
			"properties": {
				"period": {
					"$ref": "#/definitions/dto.PeriodResponse"
				},
				"commercial_name": {
					"type": "string"
				},
				"invoice_status": {
					"type": "string"
				}
			}
		},
		"dto.DashboardStatsDTO": {
			"type": "object",
			"properties": {
				"expired_count": {
					"type": "integer"
				},
				"expiring_count": {
					"type": "integer"
				},
				"suspended_count": {
					"type": "integer"
				},
				"pending_invoices_count": {
					"type": "integer"
				},
				"payments_expected_today": {
					"type": "integer"
				},
				"payments_expected_this_week": {
					"type": "integer"
				},
				"date_label": {
					"type": "string"
				}
			}
		},
		"dto.PlanResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"code": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"plan_type": {
					"type": "string"
				},
				"default_currency": {
					"type": "string"
				},
				"is_active": {
					"type": "boolean"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Bearer <token JWT>",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo datos de cabecera. Host vacío: Swagger UI usa el host de la página.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cobranza API",
	Description:      "Estados de cobranza, periodos de servicio, pagos y facturas informativas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
