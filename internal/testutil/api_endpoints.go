package testutil

const (
	APIBaseURL           = "/api/v1"
	HealthCheckEndpoint  = APIBaseURL + "/health"
	LoginEndpoint        = APIBaseURL + "/auth/login"
	RegisterEndpoint     = APIBaseURL + "/auth/register"
	RefreshTokenEndpoint = APIBaseURL + "/auth/refresh"
	NotesEndpoint        = APIBaseURL + "/notes"
	NoteEndpoint         = APIBaseURL + "/notes/" // Append note ID dynamically
	TagsEndpoint         = APIBaseURL + "/tags"
)
