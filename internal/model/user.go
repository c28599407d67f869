package model

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// User represents a registered account. Password only ever holds a bcrypt hash.
type User struct {
	Base
	Username string `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Password string `json:"-" gorm:"size:255;not null"` // Never expose in JSON

	plainPassword   string
	passwordChanged bool
}

type userRules struct {
	Username string `validate:"required,max=255"`
	Password string `validate:"required,min=10"`
}

// NewUser builds an unsaved user whose password is hashed on first save.
func NewUser(username, password string) *User {
	u := &User{Username: username}
	u.SetPassword(password)
	return u
}

// SetPassword stages a new plain-text password. It is validated and hashed by
// the next save; saves without a staged password keep the stored hash as is.
func (u *User) SetPassword(password string) {
	u.plainPassword = password
	u.passwordChanged = true
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), passwordDigest(password)) == nil
}

// passwordDigest maps a password of any length to 44 bytes, under bcrypt's
// 72 byte input limit.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// BeforeSave trims, validates and hashes a staged password.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Username = strings.TrimSpace(u.Username)

	rules := userRules{Username: u.Username, Password: u.Password}
	if u.passwordChanged {
		rules.Password = u.plainPassword
	}
	if err := validateStruct(rules); err != nil {
		return err
	}

	if !u.passwordChanged {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(u.plainPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = string(hash)
	u.plainPassword = ""
	u.passwordChanged = false
	return nil
}
