package engine

// Router resolves an intent to its handler.
type Router struct {
	studyPlan   Handler
	performance Handler
	generalChat Handler
	collection  Handler
}

// NewRouter builds a router over the four handlers.
func NewRouter(studyPlan, performance, generalChat, collection Handler) *Router {
	return &Router{
		studyPlan:   studyPlan,
		performance: performance,
		generalChat: generalChat,
		collection:  collection,
	}
}

// DefaultRouter wires the built-in handlers.
func DefaultRouter(fallbackQuestion string) *Router {
	return NewRouter(
		StudyPlanHandler{},
		PerformanceAnalysisHandler{},
		GeneralChatHandler{},
		ProfileCollectionHandler{FallbackQuestion: fallbackQuestion},
	)
}

// Route returns the handler for intent. Anything unrecognised goes to general chat.
func (r *Router) Route(intent Intent) Handler {
	switch intent {
	case IntentStudyPlan:
		return r.studyPlan
	case IntentPerformanceAnalysis:
		return r.performance
	case IntentProfileCollection:
		return r.collection
	case IntentGeneralChat:
		return r.generalChat
	default:
		return r.generalChat
	}
}
