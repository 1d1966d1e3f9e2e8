package api

import (
	"encoding/json"
	"time"
)

type Empty struct{}

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type Container struct {
	ID              string    `json:"id"`
	ContainerNumber string    `json:"container_number"`
	TareWeight      string    `json:"tare_weight"`
	Type            string    `json:"type"`
	BookingNumber   string    `json:"booking_number"`
	Location        string    `json:"location"`
	Status          string    `json:"status"`
	LastUpdatedBy   string    `json:"last_updated_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Booking struct {
	ID            string    `json:"id"`
	BookingNumber string    `json:"booking_number"`
	Qty           int       `json:"qty"`
	Type          string    `json:"type"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type Setting struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is one change notification on the Watch stream. The first event of
// every stream has Op "synced"; "lagged" asks the client to list again.
type Event struct {
	Collection string          `json:"collection"`
	Op         string          `json:"op"`
	ID         string          `json:"id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	At         time.Time       `json:"at"`
}

// auth

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type MeRequest struct{}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// users

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type ChangeRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type DeleteUserRequest struct {
	UserID string `json:"user_id"`
}

type SendPasswordResetRequest struct {
	Email string `json:"email"`
}

// containers

type ListContainersRequest struct {
	Search string `json:"search,omitempty"`
}

type ListContainersResponse struct {
	Containers []*Container `json:"containers"`
}

type AddContainerRequest struct {
	ContainerNumber string `json:"container_number"`
	TareWeight      string `json:"tare_weight"`
	Type            string `json:"type"`
	BookingNumber   string `json:"booking_number"`
	Location        string `json:"location"`
}

type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type DeleteContainerRequest struct {
	ID string `json:"id"`
}

type ExportContainersRequest struct {
	Search string `json:"search,omitempty"`
}

type ExportContainersResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}

// bookings

type ListBookingsRequest struct {
	Search string `json:"search,omitempty"`
}

type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
}

type AddBookingRequest struct {
	BookingNumber string `json:"booking_number"`
	Qty           int    `json:"qty"`
	Type          string `json:"type"`
}

type DeleteBookingRequest struct {
	ID string `json:"id"`
}

// settings

type ListSettingsRequest struct {
	Kind string `json:"kind"`
}

type ListSettingsResponse struct {
	Settings []*Setting `json:"settings"`
}

type AddSettingRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type DeleteSettingRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// feed

type WatchRequest struct {
	Collections []string `json:"collections,omitempty"`
}
