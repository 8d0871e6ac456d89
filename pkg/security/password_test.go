package security_test

import (
	"errors"
	"testing"

	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	"github.com/angelmondragon/pawfinderz-backend/pkg/security"
)

var fastParams = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("whiskers42", fastParams)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := security.VerifyPassword("whiskers42", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("whiskers43", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for wrong password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	for _, encoded := range []string{"not-a-hash", "$argon2id$v=1$m=1,t=1,p=1$AA$AA", "$argon2id$v=19$garbage$AA$AA"} {
		if _, err := security.VerifyPassword("irrelevant", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("%q: expected ErrInvalidHash, got %v", encoded, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := security.HashPassword("whiskers42", fastParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if security.NeedsRehash(hash, fastParams) {
		t.Fatal("hash made with current params should not need a rehash")
	}
	stronger := fastParams
	stronger.ArgonTime = 3
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("raising the time cost should require a rehash")
	}
	if !security.NeedsRehash("garbage", fastParams) {
		t.Fatal("malformed hashes always need a rehash")
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	cases := map[string]bool{
		"short1":      false,
		"onlyletters": false,
		"12345678":    false,
		"goodboy123":  true,
	}
	for pw, ok := range cases {
		err := security.CheckPasswordPolicy(pw)
		if ok && err != nil {
			t.Fatalf("%q should pass: %v", pw, err)
		}
		if !ok && !errors.Is(err, security.ErrWeakPassword) {
			t.Fatalf("%q should fail with ErrWeakPassword, got %v", pw, err)
		}
	}
}
