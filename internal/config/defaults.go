package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultDBPath         = "edubot.db"
	DefaultDBOpTimeout    = 5 * time.Second
	DefaultHistoryRetries = 3

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 0.7
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 2 // seconds

	DefaultShortTermCapacity = 10
	DefaultShortWindow       = 10
	DefaultFactWindow        = 3
	DefaultTruncateRunes     = 100
	DefaultExtractor         = "pattern"
	DefaultExtractTimeout    = 20 * time.Second

	DefaultGenerateTimeout  = 2 * time.Minute
	DefaultPersistTimeout   = 10 * time.Second
	DefaultExamHistoryLimit = 3

	DefaultSQLMaintenanceSchedule = "0 0 4 * * *"
	DefaultMemoryPruneSchedule    = "0 */30 * * * *"
)

// DefaultMessages are the Persian texts the bot sends on its own.
var DefaultMessages = MessagesConfig{
	Welcome:        "👋 سلام %s! خوش آمدید.\nچطور می‌توانم امروز به شما کمک کنم؟",
	WelcomeNewUser: "👋 سلام! به بات مشاور تحصیلی خوش آمدید.\nبرای ارائه مشاوره بهتر، لطفاً اطلاعات پروفایل خود را تکمیل کنید.",
	Help: `🧠 راهنمای بات مشاور تحصیلی:

/start - شروع گفتگو با بات
/profile - مشاهده و تکمیل پروفایل
/plan - درخواست برنامه مطالعاتی
/analysis - تحلیل عملکرد آزمون‌ها
/cancel - لغو عملیات جاری
/help - مشاهده راهنما`,
	ProfileMissing:    "لطفاً ابتدا پروفایل خود را تکمیل کنید.",
	ProfileIncomplete: "پروفایل شما ناقص است. لطفاً ابتدا آن را تکمیل کنید.",
	ProfileRequired:   "برای ارائه مشاوره بهتر، لطفاً اطلاعات پروفایل خود را تکمیل کنید 📝",
	ProfileStart:      "لطفاً خودتو رو معرفی کن. چیزایی مثل نام، پایه تحصیلی، و علاقه هاتو بگو:",
	ProfileCancelled:  "فرآیند تکمیل پروفایل لغو شد.",
	ProfileSaved:      "✅ اطلاعات پروفایل شما با موفقیت ذخیره شد!\nحالا می‌توانید از خدمات مشاوره تحصیلی استفاده کنید.",
	ProfileRetry:      "متوجه نشدم. لطفاً اطلاعات بیشتری در مورد خود بدهید (نام، پایه تحصیلی، تاریخ کنکور و...).",
	PlanPrompt:        "📚 لطفاً توضیح دهید برای چه دوره زمانی و با چه هدفی برنامه مطالعاتی می‌خواهید؟",
	AnalysisPrompt:    "📊 لطفاً نتایج آزمون خود را وارد کنید (به صورت: نام درس: تراز\nمثال:\nریاضی: 6000\nفیزیک: 5500\nشیمی: 6200)",
	AnalysisEmpty:     "نتیجه‌ای پیدا نشد. لطفاً هر درس را در یک خط به شکل «نام درس: تراز» بنویسید.",
	Cancelled:         "عملیات لغو شد.",
	Apology:           "متأسفانه در پردازش درخواست شما مشکلی پیش آمد. لطفاً دوباره تلاش کنید.",
	EmptyReply:        "پاسخی برای این پیام ندارم. لطفاً سؤال خود را کمی واضح‌تر بپرسید.",
	Unauthorized:      "🚫 شما اجازه استفاده از این دستور را ندارید.",
	ResetConfirm:      "🔄 تاریخچه گفتگو و حافظه پاک شد.",
	ResetError:        "❌ پاک کردن تاریخچه با خطا مواجه شد.",
}

// setDefaults registers every key with viper so that AutomaticEnv can override
// it and Unmarshal sees a complete tree even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.system_instruction", "")
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelay)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.op_timeout", DefaultDBOpTimeout)
	v.SetDefault("database.history_retries", DefaultHistoryRetries)

	v.SetDefault("memory.short_term_capacity", DefaultShortTermCapacity)
	v.SetDefault("memory.short_window", DefaultShortWindow)
	v.SetDefault("memory.fact_window", DefaultFactWindow)
	v.SetDefault("memory.truncate_runes", DefaultTruncateRunes)
	v.SetDefault("memory.extractor", DefaultExtractor)
	v.SetDefault("memory.extract_timeout", DefaultExtractTimeout)
	v.SetDefault("memory.idle_ttl", time.Duration(0))

	v.SetDefault("engine.generate_timeout", DefaultGenerateTimeout)
	v.SetDefault("engine.persist_timeout", DefaultPersistTimeout)
	v.SetDefault("engine.exam_history_limit", DefaultExamHistoryLimit)

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", DefaultSQLMaintenanceSchedule)
	v.SetDefault("scheduler.tasks.memory_prune.enabled", false)
	v.SetDefault("scheduler.tasks.memory_prune.schedule", DefaultMemoryPruneSchedule)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.welcome_new_user", DefaultMessages.WelcomeNewUser)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.profile_missing", DefaultMessages.ProfileMissing)
	v.SetDefault("messages.profile_incomplete", DefaultMessages.ProfileIncomplete)
	v.SetDefault("messages.profile_required", DefaultMessages.ProfileRequired)
	v.SetDefault("messages.profile_start", DefaultMessages.ProfileStart)
	v.SetDefault("messages.profile_cancelled", DefaultMessages.ProfileCancelled)
	v.SetDefault("messages.profile_saved", DefaultMessages.ProfileSaved)
	v.SetDefault("messages.profile_retry", DefaultMessages.ProfileRetry)
	v.SetDefault("messages.plan_prompt", DefaultMessages.PlanPrompt)
	v.SetDefault("messages.analysis_prompt", DefaultMessages.AnalysisPrompt)
	v.SetDefault("messages.analysis_empty", DefaultMessages.AnalysisEmpty)
	v.SetDefault("messages.cancelled", DefaultMessages.Cancelled)
	v.SetDefault("messages.apology", DefaultMessages.Apology)
	v.SetDefault("messages.empty_reply", DefaultMessages.EmptyReply)
	v.SetDefault("messages.unauthorized", DefaultMessages.Unauthorized)
	v.SetDefault("messages.reset_confirm", DefaultMessages.ResetConfirm)
	v.SetDefault("messages.reset_error", DefaultMessages.ResetError)
}
