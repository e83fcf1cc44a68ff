package services

import (
	"context"
	"sync"
	"time"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the storage-level guarantees
// the Mongo implementations provide, in particular the conditional
// seat decrement in AcceptWithSeat, so the contention tests exercise
// the same semantics the real transaction enforces.

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Format: "text",
		Output: "stderr",
	})
	return log
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[primitive.ObjectID]*models.Profile)}
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	if _, ok := f.profiles[profile.ID]; ok {
		return apperrors.Duplicate("profile already exists")
	}
	clone := *profile
	f.profiles[profile.ID] = &clone
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile, ok := f.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("profile")
	}
	clone := *profile
	return &clone, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile, ok := f.profiles[id]
	if !ok {
		return apperrors.NotFound("profile")
	}
	applyProfileUpdates(profile, updates)
	return nil
}

func (f *fakeProfileRepo) UpdateSubscriptionIf(ctx context.Context, id primitive.ObjectID, expected models.SubscriptionStatus, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile, ok := f.profiles[id]
	if !ok || profile.SubscriptionStatus != expected {
		return false, nil
	}
	applyProfileUpdates(profile, updates)
	return true, nil
}

func (f *fakeProfileRepo) ListBySubscriptionStatus(ctx context.Context, status models.SubscriptionStatus) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Profile
	for _, profile := range f.profiles {
		if profile.SubscriptionStatus == status {
			clone := *profile
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) IncrementTripsCompleted(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if profile, ok := f.profiles[id]; ok {
		profile.TripsCompleted++
	}
	return nil
}

func (f *fakeProfileRepo) SetRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile, ok := f.profiles[id]
	if !ok {
		return apperrors.NotFound("profile")
	}
	profile.RatingAverage = average
	profile.RatingCount = count
	return nil
}

func applyProfileUpdates(profile *models.Profile, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "subscription_status":
			profile.SubscriptionStatus = value.(models.SubscriptionStatus)
		case "subscription_end_date":
			switch v := value.(type) {
			case nil:
				profile.SubscriptionEndDate = nil
			case time.Time:
				profile.SubscriptionEndDate = &v
			case *time.Time:
				profile.SubscriptionEndDate = v
			}
		case "payment_verified":
			profile.PaymentVerified = value.(bool)
		case "phone":
			profile.Phone = value.(string)
		case "car_brand":
			profile.CarBrand = value.(string)
		case "car_model":
			profile.CarModel = value.(string)
		case "car_color":
			profile.CarColor = value.(string)
		case "car_plate":
			profile.CarPlate = value.(string)
		}
	}
}

type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[primitive.ObjectID]*models.Trip

	// requests is wired by newFakeRequestRepo so DeleteCascade and
	// AcceptWithSeat can touch both stores under one lock ordering.
	requests *fakeRequestRepo

	createErr error
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[primitive.ObjectID]*models.Trip)}
}

func (f *fakeTripRepo) Create(ctx context.Context, trip *models.Trip) error {
	if f.createErr != nil {
		return f.createErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.trips {
		if trip.IdempotencyKey != "" && existing.IdempotencyKey == trip.IdempotencyKey {
			return apperrors.Duplicate("trip already exists")
		}
	}

	if trip.ID.IsZero() {
		trip.ID = primitive.NewObjectID()
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	clone := *trip
	f.trips[trip.ID] = &clone
	return nil
}

func (f *fakeTripRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	trip, ok := f.trips[id]
	if !ok {
		return nil, apperrors.NotFound("trip")
	}
	clone := *trip
	return &clone, nil
}

func (f *fakeTripRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, trip := range f.trips {
		if trip.IdempotencyKey == key {
			clone := *trip
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("trip")
}

func (f *fakeTripRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	trip, ok := f.trips[id]
	if !ok {
		return apperrors.NotFound("trip")
	}
	if status, ok := updates["status"]; ok {
		trip.Status = status.(models.TripStatus)
	}
	return nil
}

func (f *fakeTripRepo) ListOpen(ctx context.Context, filter interfaces.TripFilter, fromDate string) ([]*models.TripWithDriver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.TripWithDriver
	for _, trip := range f.trips {
		if trip.Status != models.TripStatusOpen || trip.Date < fromDate {
			continue
		}
		if filter.FromCity != "" && trip.FromLoc != filter.FromCity {
			continue
		}
		clone := *trip
		out = append(out, &models.TripWithDriver{Trip: clone})
	}
	return out, nil
}

func (f *fakeTripRepo) ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Trip
	for _, trip := range f.trips {
		if trip.DriverID == driverID {
			clone := *trip
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) ListCompletedByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Trip
	for _, trip := range f.trips {
		if trip.DriverID == driverID && trip.Status == models.TripStatusCompleted {
			clone := *trip
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TripStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	trip, ok := f.trips[id]
	if !ok {
		return apperrors.NotFound("trip")
	}
	trip.Status = status
	return nil
}

func (f *fakeTripRepo) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.trips[id]; !ok {
		return apperrors.NotFound("trip")
	}
	delete(f.trips, id)

	if f.requests != nil {
		f.requests.deleteByTrip(id)
	}
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.TripRequest
	trips    *fakeTripRepo
}

func newFakeRequestRepo(trips *fakeTripRepo) *fakeRequestRepo {
	repo := &fakeRequestRepo{
		requests: make(map[primitive.ObjectID]*models.TripRequest),
		trips:    trips,
	}
	if trips != nil {
		trips.requests = repo
	}
	return repo
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.TripRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.requests {
		if existing.TripID == request.TripID && existing.PassengerID == request.PassengerID {
			return apperrors.Duplicate("seat already requested for this trip")
		}
	}

	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	request.CreatedAt = time.Now()
	clone := *request
	f.requests[request.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TripRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("request")
	}
	clone := *request
	return &clone, nil
}

// AcceptWithSeat reproduces the transactional contract: the request
// flips to accepted and the seat decrements only while the trip is open
// and seats remain, atomically with respect to every other accept.
func (f *fakeRequestRepo) AcceptWithSeat(ctx context.Context, requestID primitive.ObjectID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips.mu.Lock()
	defer f.trips.mu.Unlock()

	request, ok := f.requests[requestID]
	if !ok {
		return 0, apperrors.NotFound("request")
	}
	if request.Status != models.RequestStatusPending {
		return 0, apperrors.State("request is already %s", request.Status)
	}

	trip, ok := f.trips.trips[request.TripID]
	if !ok {
		return 0, apperrors.NotFound("trip")
	}
	if trip.Status != models.TripStatusOpen && trip.Status != models.TripStatusFull {
		return 0, apperrors.State("trip is no longer accepting passengers")
	}
	if trip.Status != models.TripStatusOpen || trip.SeatsAvailable <= 0 {
		return 0, apperrors.Capacity("no seats remain on this trip")
	}

	trip.SeatsAvailable--
	if trip.SeatsAvailable == 0 {
		trip.Status = models.TripStatusFull
	}
	request.Status = models.RequestStatusAccepted
	return trip.SeatsAvailable, nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return apperrors.NotFound("request")
	}
	if request.Status != models.RequestStatusPending {
		return apperrors.State("request is already %s", request.Status)
	}
	request.Status = status
	return nil
}

func (f *fakeRequestRepo) ListForDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.DriverRequestView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.DriverRequestView
	for _, request := range f.requests {
		if request.DriverID != driverID || request.Status == models.RequestStatusRejected {
			continue
		}
		clone := *request
		out = append(out, &models.DriverRequestView{TripRequest: clone})
	}
	return out, nil
}

func (f *fakeRequestRepo) ListForPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.PassengerRequestView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.PassengerRequestView
	for _, request := range f.requests {
		if request.PassengerID != passengerID {
			continue
		}
		clone := *request
		out = append(out, &models.PassengerRequestView{TripRequest: clone})
	}
	return out, nil
}

func (f *fakeRequestRepo) ListAcceptedCompletedForPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.PassengerRequestView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips.mu.Lock()
	defer f.trips.mu.Unlock()

	var out []*models.PassengerRequestView
	for _, request := range f.requests {
		if request.PassengerID != passengerID || request.Status != models.RequestStatusAccepted {
			continue
		}
		trip, ok := f.trips.trips[request.TripID]
		if !ok || trip.Status != models.TripStatusCompleted {
			continue
		}
		requestClone := *request
		tripClone := *trip
		out = append(out, &models.PassengerRequestView{
			TripRequest: requestClone,
			Trip:        &tripClone,
		})
	}
	return out, nil
}

func (f *fakeRequestRepo) HasAccepted(ctx context.Context, tripID, passengerID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, request := range f.requests {
		if request.TripID == tripID && request.PassengerID == passengerID && request.Status == models.RequestStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) deleteByTrip(tripID primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, request := range f.requests {
		if request.TripID == tripID {
			delete(f.requests, id)
		}
	}
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{}
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.reviews {
		if existing.TripID == review.TripID && existing.ReviewerID == review.ReviewerID {
			return apperrors.Duplicate("trip already reviewed")
		}
	}

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	review.CreatedAt = time.Now()
	clone := *review
	f.reviews = append(f.reviews, &clone)
	return nil
}

func (f *fakeReviewRepo) Exists(ctx context.Context, tripID, reviewerID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, review := range f.reviews {
		if review.TripID == tripID && review.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID) ([]*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Review
	for _, review := range f.reviews {
		if review.RevieweeID == revieweeID {
			clone := *review
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListTripIDsByReviewer(ctx context.Context, reviewerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []primitive.ObjectID
	for _, review := range f.reviews {
		if review.ReviewerID == reviewerID {
			out = append(out, review.TripID)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) Summarize(ctx context.Context, revieweeID primitive.ObjectID) (*models.RatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var sum, count int
	for _, review := range f.reviews {
		if review.RevieweeID == revieweeID {
			sum += review.Rating
			count++
		}
	}

	summary := &models.RatingSummary{Count: count}
	if count > 0 {
		summary.Average = float64(sum) / float64(count)
	}
	return summary, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return apperrors.Duplicate("email already registered")
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user, ok := f.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]interface{})}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	return apperrors.NotFound("cache entry")
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value
	return true, nil
}

func (f *fakeCache) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count, _ := f.data[key].(int64)
	count++
	f.data[key] = count
	return count, nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error {
	return nil
}
