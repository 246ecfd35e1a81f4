// Package config loads insightdesk configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file (INSIGHT_CONFIG, config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// Variables follow INSIGHT_<SECTION>_<NAME>. Each one also falls back to its
// bare name, which keeps the deployment variables of the storage API working:
//
//	PORT=8080
//	SUPABASE_URL=https://project.supabase.co
//	SUPABASE_SERVICE_ROLE_KEY=...
//	SUPABASE_BUCKET=artifacts
//	SUPABASE_SIGNED_URL_TTL_SECONDS=7200
//	STRIPE_SECRET_KEY=sk_live_...
//	HISTORY_USERNAME=admin
//	HISTORY_PASSWORD=...
//	ALLOWED_ORIGINS=https://app.example.com,https://admin.example.com
//
// Storage, payments, history and the Sheets mirror are optional. Handlers
// answer 503 when the collaborator they need is not configured.
package config
