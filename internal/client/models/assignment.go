package models

import "time"

// Assignment designates a client hospital to work on a model/data-domain pair.
type Assignment struct {
	ID               int64     `json:"id"`
	ClientEmail      string    `json:"client_email"`
	ClientHospital   string    `json:"client_hospital"`
	CentralAuthEmail string    `json:"central_auth_email,omitempty"`
	ModelName        string    `json:"model_name"`
	DataDomain       string    `json:"data_domain"`
	AssignedAt       time.Time `json:"assigned_at"`
}

// AssignRequest is the JSON body of /assign_client/.
type AssignRequest struct {
	CentralAuthID int64  `json:"central_auth_id"`
	ClientID      int64  `json:"client_id"`
	DataDomain    string `json:"data_domain"`
	ModelName     string `json:"model_name"`
}
