// keygen mints a public/secret API key pair scoped to an org/project and
// inserts it into the SQLite org_api_keys table, generalized from the
// teacher's single-bearer-token SHA-256 printer to the Basic-auth
// publicKey:secretKey pair C2 verifies.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"github.com/SPAN-LLC/langfuse/internal/auth"
	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage/sqlite"
)

func main() {
	dbPath := flag.String("db", "./data/langfuse.db", "path to the SQLite database")
	orgID := flag.String("org", "", "org id to mint the key for (required)")
	projectID := flag.String("project", "", "project id to scope the key to (required)")
	plan := flag.String("plan", string(domain.PlanDefault), "billing plan for the org")
	accessLevel := flag.String("access", string(domain.AccessLevelAll), "access level: all|scores")
	flag.Parse()

	if *orgID == "" || *projectID == "" {
		fmt.Println("Usage: keygen -org <orgId> -project <projectId> [-plan <plan>] [-access all|scores] [-db <path>]")
		log.Fatal("both -org and -project are required")
	}

	publicKey, err := randomToken("pk", 16)
	if err != nil {
		log.Fatalf("generate public key: %v", err)
	}
	secretKey, err := randomToken("sk", 24)
	if err != nil {
		log.Fatalf("generate secret key: %v", err)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	key := &domain.OrgEnrichedApiKey{
		OrgID:       *orgID,
		ProjectID:   *projectID,
		PublicKey:   publicKey,
		SecretHash:  auth.HashSecretKey(secretKey),
		Plan:        domain.Plan(*plan),
		AccessLevel: domain.AccessLevel(*accessLevel),
	}
	if err := store.Put(context.Background(), key); err != nil {
		log.Fatalf("store key: %v", err)
	}

	fmt.Printf("Org:          %s\n", *orgID)
	fmt.Printf("Project:      %s\n", *projectID)
	fmt.Printf("Public Key:   %s\n", publicKey)
	fmt.Printf("Secret Key:   %s\n", secretKey)
	fmt.Println("\nAuthorization header:")
	fmt.Printf("  Basic %s\n", basicAuthValue(publicKey, secretKey))
}

func randomToken(prefix string, byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return prefix + "-" + hex.EncodeToString(buf), nil
}

func basicAuthValue(publicKey, secretKey string) string {
	return base64.StdEncoding.EncodeToString([]byte(publicKey + ":" + secretKey))
}
