package hashcrypto

import "golang.org/x/crypto/bcrypt"

func HashPwd(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

func ComparePwd(hash, password []byte) error {
	return bcrypt.CompareHashAndPassword(hash, password)
}
