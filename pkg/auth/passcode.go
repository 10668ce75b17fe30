package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasscodeManager hashes and checks merchant passcodes.
type PasscodeManager interface {
	Hash(passcode string) (string, error)
	Check(hashed, passcode string) (bool, error)
}

type BcryptManager struct {
	Cost int
}

func NewBcryptManager() *BcryptManager {
	return &BcryptManager{Cost: bcrypt.DefaultCost}
}

func (m *BcryptManager) Hash(passcode string) (string, error) {
	cost := m.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(passcode), cost)
	if err != nil {
		return "", fmt.Errorf("hash passcode: %w", err)
	}
	return string(b), nil
}

func (m *BcryptManager) Check(hashed, passcode string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(passcode))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// GeneratePasscode returns 8 random hex characters.
func GeneratePasscode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate passcode: %w", err)
	}
	return hex.EncodeToString(b), nil
}
