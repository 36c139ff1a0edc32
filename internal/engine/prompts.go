package engine

// Placeholders used when a profile field is empty.
const (
	defaultStudentName = "دانش‌آموز"
	unknownValue       = "نامشخص"
)

const advisorSystemPrompt = `شما مشاور تحصیلی دانش‌آموز هستید.
پاسخ را به فارسی بنویسید و لحن دوستانه و مشاورانه داشته باشید.`

const collectorSystemPrompt = `شما دستیار هوشمندی هستید که به جمع‌آوری اطلاعات پروفایل دانش‌آموزان کمک می‌کنید.
خروجی شما فقط یک شیء JSON است.`

// studyPlanPrompt: profile block, request.
const studyPlanPrompt = `شما باید یک برنامه مطالعاتی شخصی‌سازی شده ایجاد کنید.

اطلاعات دانش‌آموز:
%s

درخواست دانش‌آموز: %s

لطفاً یک برنامه مطالعاتی دقیق و مناسب با توجه به اطلاعات فوق ارائه دهید.
برنامه باید شامل موارد زیر باشد:
1. زمان‌بندی روزانه
2. اولویت‌بندی دروس
3. توصیه‌های خاص برای دروس مورد نفرت
4. استراتژی‌های مطالعه مؤثر

از ایموجی استفاده کنید تا پاسخ جذاب‌تر شود. 📚✏️⏰📝`

// performancePrompt: profile block, result lines, history section.
const performancePrompt = `شما باید نتایج آزمون دانش‌آموز را تحلیل کنید.

اطلاعات دانش‌آموز:
%s

نتایج آزمون:
%s
%s
لطفاً تحلیل دقیقی از نتایج آزمون با توجه به اطلاعات فوق ارائه دهید.
تحلیل باید شامل موارد زیر باشد:
1. نقاط قوت و ضعف
2. مقایسه عملکرد در دروس مختلف
3. توصیه‌های بهبود برای دروس ضعیف‌تر
4. استراتژی‌های مطالعه برای پیشرفت

از ایموجی استفاده کنید تا پاسخ جذاب‌تر شود. 📊📈📉📚`

const examHistoryHeader = "\nسوابق آزمون‌های قبلی:\n"

// generalChatPrompt: relevant profile lines, history section, message, brevity line.
const generalChatPrompt = `باید به سؤال یا پیام دانش‌آموز پاسخ دهید.

اطلاعات دانش‌آموز:
%s
%s
پیام دانش‌آموز: %s

لطفاً پاسخی دوستانه، مفید و مرتبط با پیام دانش‌آموز ارائه دهید.
از ایموجی استفاده کنید تا پاسخ جذاب‌تر شود.%s`

const chatHistoryHeader = "\nتاریخچه مکالمه:\n"

const brevityInstruction = "\nپیام دانش‌آموز کوتاه است؛ پاسخ را کوتاه و در چند جمله بنویسید."

// profileCollectionPrompt: current profile lines, message.
const profileCollectionPrompt = `پروفایل فعلی کاربر:
%s

پیام کاربر: %s

لطفا اطلاعات جدید را از پیام کاربر استخراج کنید و تصمیم بگیرید که چه اطلاعاتی هنوز نیاز است.

اطلاعات ضروری مورد نیاز:
- نام (name)
- پایه تحصیلی (grade)
- تاریخ کنکور (exam_date)
- دروس مورد علاقه (favorite_subjects)
- دروس مورد نفرت (disliked_subjects)
- رشته مورد نظر (desired_major)

خروجی شما باید به شکل JSON باشد:
{
  "extracted_info": {"name": "...", "favorite_subjects": ["..."]},
  "profile_complete": true/false,
  "next_question": "سوال بعدی برای تکمیل اطلاعات"
}`

const emptyProfileText = "(هنوز اطلاعاتی ثبت نشده است)"

// missingFieldsQuestion: comma separated field labels.
const missingFieldsQuestion = "برای تکمیل پروفایل لطفاً این موارد را هم بگویید: %s"

var fieldLabels = map[string]string{
	FieldName:             "نام",
	FieldGrade:            "پایه تحصیلی",
	FieldExamDate:         "تاریخ کنکور",
	FieldFavoriteSubjects: "دروس مورد علاقه",
	FieldDislikedSubjects: "دروس مورد نفرت",
	FieldDesiredMajor:     "رشته مورد نظر",
}

// Keywords that make a profile field relevant to a general chat message.
var relevanceKeywords = map[string][]string{
	FieldGrade:            {"پایه", "کلاس", "grade"},
	FieldExamDate:         {"کنکور", "آزمون", "امتحان", "exam"},
	FieldFavoriteSubjects: {"علاقه", "دوست دارم", "favorite"},
	FieldDislikedSubjects: {"سخت", "متنفر", "بدم", "ضعیف", "hate", "dislike"},
	FieldDesiredMajor:     {"رشته", "دانشگاه", "major", "university"},
}
