package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// CheckFunc проверяет одну зависимость сервиса
type CheckFunc func(ctx context.Context) error

// HealthChecker интерфейс для проверки здоровья сервиса
type HealthChecker interface {
	Check(ctx context.Context) *HealthStatus
}

// HealthStatus представляет статус здоровья сервиса
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]Status `json:"services,omitempty"`
	Version   string            `json:"version,omitempty"`
}

// Status представляет статус зависимости
type Status struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// Healthy сообщает, что все зависимости в порядке
func (s *HealthStatus) Healthy() bool {
	return s.Status == "healthy"
}

// DependencyChecker проверяет набор именованных зависимостей параллельно
type DependencyChecker struct {
	version string
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewDependencyChecker создает проверку с таймаутом на каждую зависимость
func NewDependencyChecker(version string, timeout time.Duration) *DependencyChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &DependencyChecker{
		version: version,
		timeout: timeout,
		checks:  make(map[string]CheckFunc),
	}
}

// Register добавляет зависимость
func (d *DependencyChecker) Register(name string, check CheckFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checks[name] = check
}

// Names возвращает отсортированный список зарегистрированных зависимостей
func (d *DependencyChecker) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.checks))
	for name := range d.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check выполняет все проверки
func (d *DependencyChecker) Check(ctx context.Context) *HealthStatus {
	d.mu.RLock()
	checks := make(map[string]CheckFunc, len(d.checks))
	for name, check := range d.checks {
		checks[name] = check
	}
	d.mu.RUnlock()

	result := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]Status, len(checks)),
		Version:   d.version,
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			st := Status{Status: "healthy"}
			if err := check(checkCtx); err != nil {
				st = Status{Status: "unhealthy", Details: err.Error()}
			}

			mu.Lock()
			result.Services[name] = st
			if st.Status != "healthy" {
				result.Status = "unhealthy"
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	return result
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// Handler создает HTTP обработчик для health check эндпоинта
func Handler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := checker.Check(r.Context())
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}

// ReadyHandler возвращает 200, если все зависимости доступны, иначе 503
func ReadyHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status := checker.Check(r.Context()); !status.Healthy() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// LiveHandler создает HTTP обработчик для live check эндпоинта
func LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}
