package domain

import (
	"context"
	"time"
)

const (
	RoleMentee = "mentee"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	MenteeID        *string   `json:"menteeId,omitempty"`
	Country         string    `json:"country,omitempty"`
	University      string    `json:"university,omitempty"`
	Program         string    `json:"program,omitempty"`
	YearOfStudy     string    `json:"yearOfStudy,omitempty"`
	Cohort          string    `json:"cohort,omitempty"`
	Theme           string    `json:"theme"`
	ProfileImage    string    `json:"profileImage,omitempty"`
	Role            string    `json:"role"`
	ProfileComplete bool      `json:"profileComplete"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PublicUser is the user view returned alongside auth tokens.
type PublicUser struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Country      string `json:"country,omitempty"`
	University   string `json:"university,omitempty"`
	Program      string `json:"program,omitempty"`
	YearOfStudy  string `json:"yearOfStudy,omitempty"`
	Cohort       string `json:"cohort,omitempty"`
	Theme        string `json:"theme"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Country:      u.Country,
		University:   u.University,
		Program:      u.Program,
		YearOfStudy:  u.YearOfStudy,
		Cohort:       u.Cohort,
		Theme:        u.Theme,
		ProfileImage: u.ProfileImage,
	}
}

type RegisterInput struct {
	FirstName  string `json:"firstName" validate:"required,not_blank,max=100,valid_name"`
	LastName   string `json:"lastName" validate:"required,not_blank,max=100,valid_name"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Country    string `json:"country" validate:"omitempty,oneof=Uganda Kenya Rwanda Ethiopia Nigeria"`
	University string `json:"university" validate:"max=200,no_emoji"`
	Program    string `json:"program" validate:"max=200,no_emoji"`
}

// UserProfilePatch carries only the fields present in the request body.
type UserProfilePatch struct {
	FirstName    *string `json:"firstName" validate:"omitempty,not_blank,max=100,valid_name"`
	LastName     *string `json:"lastName" validate:"omitempty,not_blank,max=100,valid_name"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Country      *string `json:"country" validate:"omitempty,oneof=Uganda Kenya Rwanda Ethiopia Nigeria"`
	University   *string `json:"university" validate:"omitempty,max=200,no_emoji"`
	Program      *string `json:"program" validate:"omitempty,max=200,no_emoji"`
	YearOfStudy  *string `json:"yearOfStudy" validate:"omitempty,max=50"`
	Cohort       *string `json:"cohort" validate:"omitempty,max=50"`
	Theme        *string `json:"theme" validate:"omitempty,oneof=Research Leadership Career Innovation"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,max=500"`
}

type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password, clientIP string) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	Me(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, patch *UserProfilePatch) (*PublicUser, error)
}
