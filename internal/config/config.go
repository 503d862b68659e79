package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	Env     string

	// Database
	DBUrl string

	// Twilio / SendGrid for overdue-turn notifications
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string

	// Auth
	RSAPublicKey *rsa.PublicKey

	// LaunchDarkly flags
	LDFlag_TwilioFromPhone     string
	LDFlag_SendgridFromEmail   string
	LDFlag_SendgridSandboxMode bool
	LDFlag_SeedDbWithTestData  bool
	LDFlag_CORSHighSecurity    bool
}

const LDConnectionTimeout = 5 * time.Second

// build-time overrides
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

func LoadConfig() *Config {
	if AppName == "" {
		AppName = "maintenance-manager"
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	cfg := &Config{
		AppName: AppName,
		AppPort: appPort,
		Env:     env,
		DBUrl:   dbURL,

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),

		// flag defaults when LaunchDarkly is unavailable
		LDFlag_TwilioFromPhone:     "+10005550006",
		LDFlag_SendgridFromEmail:   "no-reply@turns.ips-ux.com",
		LDFlag_SendgridSandboxMode: env != "production",
	}

	pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if pubB64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}
	cfg.RSAPublicKey = pubKey

	loadFlags(cfg)
	return cfg
}

// loadFlags reads feature flags from LaunchDarkly. A missing SDK key keeps
// the compiled-in defaults so local stacks run without an LD account.
func loadFlags(cfg *Config) {
	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set, using default flag values")
		return
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	kind := LDServerContextKind
	key := LDServerContextKey
	if kind == "" {
		kind = "service"
	}
	if key == "" {
		key = cfg.AppName + "-" + cfg.Env
	}
	ctx := ldcontext.NewWithKind(ldcontext.Kind(kind), key)

	twilioFromFlag, err := ldClient.StringVariation("twilio_from_phone", ctx, cfg.LDFlag_TwilioFromPhone)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving twilio_from_phone flag")
	}
	utils.Logger.Debugf("twilio_from_phone flag: %s", twilioFromFlag)
	cfg.LDFlag_TwilioFromPhone = twilioFromFlag

	sgFromFlag, err := ldClient.StringVariation("sendgrid_from_email", ctx, cfg.LDFlag_SendgridFromEmail)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	utils.Logger.Debugf("sendgrid_from_email flag: %s", sgFromFlag)
	cfg.LDFlag_SendgridFromEmail = sgFromFlag

	sgSandboxFlag, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, cfg.LDFlag_SendgridSandboxMode)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_sandbox_mode flag")
	}
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", sgSandboxFlag)
	cfg.LDFlag_SendgridSandboxMode = sgSandboxFlag

	seedFlag, err := ldClient.BoolVariation("seed_db_with_test_data", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving seed_db_with_test_data flag")
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", seedFlag)
	cfg.LDFlag_SeedDbWithTestData = seedFlag

	corsFlag, err := ldClient.BoolVariation("cors_high_security", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving cors_high_security flag")
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsFlag)
	cfg.LDFlag_CORSHighSecurity = corsFlag
}
