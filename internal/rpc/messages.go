// Package rpc holds the wire contract of the KeyCustodyService: message
// types in the protobuf encoding of keycustody.proto, the codec they travel
// in, the server descriptor and a typed client. Server and client both
// import it so the two sides cannot drift.
package rpc

import "time"

// RegisterStatus is the non-error outcome of Register.
type RegisterStatus int32

const (
	RegisterStatusUnspecified RegisterStatus = iota
	RegisterStatusOK
	RegisterStatusUsernameExists
	RegisterStatusMissingCredentials
)

func (s RegisterStatus) String() string {
	switch s {
	case RegisterStatusOK:
		return "OK"
	case RegisterStatusUsernameExists:
		return "USERNAME_EXISTS"
	case RegisterStatusMissingCredentials:
		return "MISSING_CREDENTIALS"
	}
	return "REGISTER_STATUS_UNSPECIFIED"
}

// noFields is embedded by messages without fields.
type noFields struct{}

func (noFields) appendWire(b []byte) ([]byte, error) { return b, nil }

func (noFields) readWire(b []byte) error {
	return eachField(b, func(field) error { return nil })
}

type RegisterRequest struct {
	Username string
	Password string
}

func (m *RegisterRequest) appendWire(b []byte) ([]byte, error) {
	b = appendString(b, 1, m.Username)
	return appendString(b, 2, m.Password), nil
}

func (m *RegisterRequest) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Username, err = f.asString()
		case 2:
			m.Password, err = f.asString()
		}
		return err
	})
}

type RegisterResponse struct {
	Status    RegisterStatus
	AccountID string
}

func (m *RegisterResponse) appendWire(b []byte) ([]byte, error) {
	b = appendInt(b, 1, int64(m.Status))
	return appendString(b, 2, m.AccountID), nil
}

func (m *RegisterResponse) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v int64
			v, err = f.asInt()
			m.Status = RegisterStatus(v)
		case 2:
			m.AccountID, err = f.asString()
		}
		return err
	})
}

type LoginRequest struct {
	Username string
	Password string
}

func (m *LoginRequest) appendWire(b []byte) ([]byte, error) {
	b = appendString(b, 1, m.Username)
	return appendString(b, 2, m.Password), nil
}

func (m *LoginRequest) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Username, err = f.asString()
		case 2:
			m.Password, err = f.asString()
		}
		return err
	})
}

// LoginResponse and RefreshTokenResponse share this layout.
func appendTokenPair(b []byte, access, refresh string) []byte {
	b = appendString(b, 1, access)
	return appendString(b, 2, refresh)
}

func readTokenPair(b []byte, access, refresh *string) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			*access, err = f.asString()
		case 2:
			*refresh, err = f.asString()
		}
		return err
	})
}

type LoginResponse struct {
	AccessToken  string
	RefreshToken string
}

func (m *LoginResponse) appendWire(b []byte) ([]byte, error) {
	return appendTokenPair(b, m.AccessToken, m.RefreshToken), nil
}

func (m *LoginResponse) readWire(b []byte) error {
	return readTokenPair(b, &m.AccessToken, &m.RefreshToken)
}

type RefreshTokenRequest struct {
	RefreshToken string
}

func (m *RefreshTokenRequest) appendWire(b []byte) ([]byte, error) {
	return appendString(b, 1, m.RefreshToken), nil
}

func (m *RefreshTokenRequest) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		if f.num == 1 {
			m.RefreshToken, err = f.asString()
		}
		return err
	})
}

type RefreshTokenResponse struct {
	AccessToken  string
	RefreshToken string
}

func (m *RefreshTokenResponse) appendWire(b []byte) ([]byte, error) {
	return appendTokenPair(b, m.AccessToken, m.RefreshToken), nil
}

func (m *RefreshTokenResponse) readWire(b []byte) error {
	return readTokenPair(b, &m.AccessToken, &m.RefreshToken)
}

// LogoutRequest revokes RefreshToken on the server.
type LogoutRequest struct {
	RefreshToken string
}

func (m *LogoutRequest) appendWire(b []byte) ([]byte, error) {
	return appendString(b, 1, m.RefreshToken), nil
}

func (m *LogoutRequest) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		if f.num == 1 {
			m.RefreshToken, err = f.asString()
		}
		return err
	})
}

type LogoutResponse struct{ noFields }

// GetIdentityRequest asks for the caller's own key material.
type GetIdentityRequest struct{ noFields }

// GetIdentityResponse carries what a client needs to open its private key
// locally. EncryptedPrivateKey is only useful together with the password.
type GetIdentityResponse struct {
	AccountID           string
	Username            string
	Salt                []byte
	KDFVersion          int
	KeyAlgorithm        string
	PublicKey           []byte
	EncryptedPrivateKey []byte
}

func (m *GetIdentityResponse) appendWire(b []byte) ([]byte, error) {
	b = appendString(b, 1, m.AccountID)
	b = appendString(b, 2, m.Username)
	b = appendBytes(b, 3, m.Salt)
	b = appendInt(b, 4, int64(m.KDFVersion))
	b = appendString(b, 5, m.KeyAlgorithm)
	b = appendBytes(b, 6, m.PublicKey)
	return appendBytes(b, 7, m.EncryptedPrivateKey), nil
}

func (m *GetIdentityResponse) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.AccountID, err = f.asString()
		case 2:
			m.Username, err = f.asString()
		case 3:
			m.Salt, err = f.asBytes()
		case 4:
			var v int64
			v, err = f.asInt()
			m.KDFVersion = int(int32(v))
		case 5:
			m.KeyAlgorithm, err = f.asString()
		case 6:
			m.PublicKey, err = f.asBytes()
		case 7:
			m.EncryptedPrivateKey, err = f.asBytes()
		}
		return err
	})
}

type GetPublicKeyRequest struct {
	Username string
}

func (m *GetPublicKeyRequest) appendWire(b []byte) ([]byte, error) {
	return appendString(b, 1, m.Username), nil
}

func (m *GetPublicKeyRequest) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		if f.num == 1 {
			m.Username, err = f.asString()
		}
		return err
	})
}

type GetPublicKeyResponse struct {
	AccountID    string
	KeyAlgorithm string
	PublicKey    []byte
}

func (m *GetPublicKeyResponse) appendWire(b []byte) ([]byte, error) {
	b = appendString(b, 1, m.AccountID)
	b = appendString(b, 2, m.KeyAlgorithm)
	return appendBytes(b, 3, m.PublicKey), nil
}

func (m *GetPublicKeyResponse) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.AccountID, err = f.asString()
		case 2:
			m.KeyAlgorithm, err = f.asString()
		case 3:
			m.PublicKey, err = f.asBytes()
		}
		return err
	})
}

type GrantVaultKeyRequest struct {
	VaultID         string
	GranteeUsername string
	WrappedVaultKey []byte
}

func (m *GrantVaultKeyRequest) appendWire(b []byte) ([]byte, error) {
	b = appendString(b, 1, m.VaultID)
	b = appendString(b, 2, m.GranteeUsername)
	return appendBytes(b, 3, m.WrappedVaultKey), nil
}

func (m *GrantVaultKeyRequest) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.VaultID, err = f.asString()
		case 2:
			m.GranteeUsername, err = f.asString()
		case 3:
			m.WrappedVaultKey, err = f.asBytes()
		}
		return err
	})
}

type GrantVaultKeyResponse struct{ noFields }

type ListVaultKeyGrantsRequest struct{ noFields }

type VaultKeyGrant struct {
	VaultID          string
	GranterAccountID string
	WrappedVaultKey  []byte
	CreatedAt        time.Time
}

func (m *VaultKeyGrant) appendWire(b []byte) ([]byte, error) {
	b = appendString(b, 1, m.VaultID)
	b = appendString(b, 2, m.GranterAccountID)
	b = appendBytes(b, 3, m.WrappedVaultKey)
	return appendTime(b, 4, m.CreatedAt)
}

func (m *VaultKeyGrant) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.VaultID, err = f.asString()
		case 2:
			m.GranterAccountID, err = f.asString()
		case 3:
			m.WrappedVaultKey, err = f.asBytes()
		case 4:
			m.CreatedAt, err = f.asTime()
		}
		return err
	})
}

type ListVaultKeyGrantsResponse struct {
	Grants []*VaultKeyGrant
}

func (m *ListVaultKeyGrantsResponse) appendWire(b []byte) ([]byte, error) {
	var err error
	for _, g := range m.Grants {
		if b, err = appendMessage(b, 1, g); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *ListVaultKeyGrantsResponse) readWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		g := &VaultKeyGrant{}
		if err := f.asMessage(g); err != nil {
			return err
		}
		m.Grants = append(m.Grants, g)
		return nil
	})
}

type PingRequest struct{ noFields }

type PingResponse struct {
	Status string
}

func (m *PingResponse) appendWire(b []byte) ([]byte, error) {
	return appendString(b, 1, m.Status), nil
}

func (m *PingResponse) readWire(b []byte) error {
	return eachField(b, func(f field) (err error) {
		if f.num == 1 {
			m.Status, err = f.asString()
		}
		return err
	})
}
