package domain

type Identity struct {
	UserID   int64
	Username string
	FullName string
}

func NewIdentity(userID int64, username, fullName string) Identity {
	return Identity{
		UserID:   userID,
		Username: username,
		FullName: fullName,
	}
}

func (i Identity) IsValid() bool {
	return i.Username != ""
}

func (i Identity) String() string {
	if i.FullName == "" {
		return i.Username
	}
	return i.FullName + " (" + i.Username + ")"
}

type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	FullName string `json:"full_name" validate:"required"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}
