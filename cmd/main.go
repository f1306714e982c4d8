package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"edge-gateway/handler"
	"edge-gateway/internal/budget"
	"edge-gateway/internal/guard"
	"edge-gateway/internal/integrations/paramstore"
	"edge-gateway/internal/lead"
	"edge-gateway/internal/provider"
	"edge-gateway/internal/repository"
	"edge-gateway/internal/retrieval"
	"edge-gateway/internal/stream"
	"edge-gateway/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	enableProviders := strings.EqualFold(os.Getenv("ENABLE_PROVIDERS"), "true")
	chainOrder := provider.ParseChainOrder(os.Getenv("PROVIDER_CHAIN"))
	paramPrefix := os.Getenv("PARAM_PREFIX")
	frontendOrigin := os.Getenv("FRONTEND_ORIGIN")
	deployOrigin := os.Getenv("DEPLOY_ORIGIN")
	packURL := os.Getenv("PACK_URL")
	leadsTable := os.Getenv("LEADS_TABLE")
	leadsTTLDays := envInt("LEADS_TTL_DAYS", 0)
	leadWebhookURL := os.Getenv("LEAD_WEBHOOK_URL")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	var secrets provider.SecretGetter
	if paramPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		secrets = ssmClient
	}

	var leadStore lead.Store
	if leadsTable != "" {
		store, err := repository.New(awsdynamodb.NewFromConfig(cfg), leadsTable, leadsTTLDays)
		if err != nil {
			slog.Error("failed to create lead store", "err", err)
			os.Exit(1)
		}
		leadStore = store
	}

	ledger := budget.NewLedger()
	callers := buildCallers(secrets, paramPrefix)
	chain, err := provider.NewChain(enableProviders, chainOrder, callers, ledger)
	if err != nil {
		slog.Error("failed to create provider chain", "err", err)
		os.Exit(1)
	}

	limiter := guard.NewRateLimiter(guard.DefaultRequestsPerWindow, guard.DefaultWindow)
	checker, err := guard.NewChecker(limiter)
	if err != nil {
		slog.Error("failed to create guard checker", "err", err)
		os.Exit(1)
	}

	chatService, err := usecase.NewChatService(checker, retrieval.NewLoader(), ledger, chain, packURL, deployOrigin)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	leadService := lead.NewService(leadStore, leadWebhookURL)

	// ---- Handler ----
	h, err := handler.NewHandler(chatService, leadService, checker, stream.Encode, frontendOrigin)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

// buildCallers creates one caller per known provider identity. Providers
// with incomplete configuration stay unconfigured and get skipped by the
// chain, never errored.
func buildCallers(secrets provider.SecretGetter, paramPrefix string) map[string]provider.Caller {
	callers := make(map[string]provider.Caller)
	for _, name := range []string{"oss", "grok", "openai"} {
		desc := descriptorFromEnv(name)
		callers[name] = provider.NewOpenAICompat(desc, secrets, paramstore.SecretName(paramPrefix, name))
	}
	gemini := descriptorFromEnv("gemini")
	callers["gemini"] = provider.NewGemini(gemini, secrets, paramstore.SecretName(paramPrefix, "gemini"))
	return callers
}

func descriptorFromEnv(name string) provider.Descriptor {
	prefix := strings.ToUpper(name)
	return provider.Descriptor{
		Name:    name,
		BaseURL: os.Getenv(prefix + "_BASE_URL"),
		ModelID: os.Getenv(prefix + "_MODEL_ID"),
		APIKey:  os.Getenv(prefix + "_API_KEY"),
	}
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
