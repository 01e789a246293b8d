package hashcrypto

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPwd([]byte("Sup3r!secret"))
	if err != nil {
		t.Fatalf("HashPwd failed: %v", err)
	}

	if string(hash) == "Sup3r!secret" {
		t.Fatal("hash must not equal the plain password")
	}

	if err := ComparePwd(hash, []byte("Sup3r!secret")); err != nil {
		t.Errorf("ComparePwd rejected the correct password: %v", err)
	}

	if err := ComparePwd(hash, []byte("wrong-password")); err == nil {
		t.Error("ComparePwd accepted a wrong password")
	}
}
