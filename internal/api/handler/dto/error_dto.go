package dto

type ErrorResponse struct {
	Status  int    `json:"status" example:"404"`
	Error   string `json:"error" example:"Not Found"`
	Message string `json:"message" example:"Customer with id '7' was not found."`
}

type IndexResponse struct {
	Name    string `json:"name" example:"Customers Demo REST API Service"`
	Version string `json:"version" example:"1.0"`
	Paths   string `json:"paths" example:"http://localhost:8080/customers"`
}
