package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength applies to every locally stored password.
const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func ValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}
