package handler

type heartbeatRequest struct {
	IPAddress string `json:"ip_address,omitempty" validate:"omitempty,ip"`
}

type heartbeatPingRequest struct {
	DeviceID  string `json:"device_id"            validate:"required"`
	IPAddress string `json:"ip_address,omitempty" validate:"omitempty,ip"`
}

type batchHeartbeatRequest struct {
	Heartbeats []heartbeatPingRequest `json:"heartbeats" validate:"required,min=1,max=500,dive"`
}

type batchHeartbeatResponse struct {
	Accepted int `json:"accepted"`
}
