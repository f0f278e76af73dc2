package grpc_control

import (
	context "context"
	"fmt"
	"time"

	"stream-observer/src/config"
	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/utils"
	"stream-observer/src/watcher"
)

// -----------------------------------------------------------------------------
// ControlService Implementation
// -----------------------------------------------------------------------------

type ControlServiceImpl struct {
	UnimplementedControlServiceServer
	Name     string
	observer *watcher.Observer
	config   *config.Config
	logger   *logger.Logger
}

// -----------------------------------------------------------------------------

// NewControlService creates a new ControlServiceImpl instance
func NewControlService(config *config.Config, logger *logger.Logger, observer *watcher.Observer) *ControlServiceImpl {
	return &ControlServiceImpl{
		Name:     "GRPCControlService",
		observer: observer,
		config:   config,
		logger:   logger,
	}
}

// -----------------------------------------------------------------------------
// Watch Management
// -----------------------------------------------------------------------------

// AddWatch implements the gRPC AddWatch method
func (s *ControlServiceImpl) AddWatch(ctx context.Context, req *AddWatchRequest) (*ControlResponse, error) {
	s.logger.Info("%s : received AddWatch request for %s", s.Name, req.WatchName)

	// Convert request to internal model
	watchConfig := &models.MWatchConfig{
		Name:                req.WatchName,
		Provider:            req.Provider,
		Transport:           req.Transport,
		Network:             req.Network,
		Token:               req.Token,
		ContractAddress:     req.ContractAddress,
		Endpoint:            req.Endpoint,
		APIKey:              req.ApiKey,
		StreamIDs:           req.StreamIDs,
		PollIntervalSeconds: req.PollIntervalSeconds,
	}

	// Add to observer
	if err := s.observer.AddWatch(watchConfig); err != nil {
		s.logger.Error("%s : failed to add watch %s: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to add watch: %v", err),
			Timestamp: time.Now().Unix(),
			ErrorCode: "ADD_WATCH_FAILED",
		}, nil
	}

	return &ControlResponse{
		Success:   true,
		Message:   fmt.Sprintf("Watch '%s' added successfully", req.WatchName),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// RemoveWatch implements the gRPC RemoveWatch method
func (s *ControlServiceImpl) RemoveWatch(ctx context.Context, req *RemoveWatchRequest) (*ControlResponse, error) {
	s.logger.Info("%s : received RemoveWatch request for %s", s.Name, req.WatchName)

	if err := s.observer.RemoveWatch(req.WatchName); err != nil {
		s.logger.Error("%s : failed to remove watch %s: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to remove watch: %v", err),
			Timestamp: time.Now().Unix(),
			ErrorCode: "REMOVE_WATCH_FAILED",
		}, nil
	}

	return &ControlResponse{
		Success:   true,
		Message:   fmt.Sprintf("Watch '%s' removed successfully", req.WatchName),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// StartWatch implements the gRPC StartWatch method
func (s *ControlServiceImpl) StartWatch(ctx context.Context, req *StartWatchRequest) (*ControlResponse, error) {
	s.logger.Info("%s : received StartWatch request for %s", s.Name, req.WatchName)

	// Validate watch name
	if req.WatchName == "" {
		s.logger.Error("%s : StartWatch called with empty watch_name", s.Name)
		return &ControlResponse{
			Success:   false,
			Message:   "Watch name cannot be empty",
			Timestamp: time.Now().Unix(),
			ErrorCode: "INVALID_REQUEST",
		}, nil
	}

	// Check if the watch is already running by querying the observer directly
	if status, err := s.observer.GetWatcherStatus(req.WatchName); err == nil {
		if status.Running {
			return &ControlResponse{
				Success:   false,
				Message:   fmt.Sprintf("Watch '%s' is already running", req.WatchName),
				Timestamp: time.Now().Unix(),
				ErrorCode: "WATCH_ALREADY_RUNNING",
			}, nil
		}
	}

	// Check if the watch exists in the observer, if not materialize it from
	// its configuration entry
	if _, err := s.observer.GetWatcherStatus(req.WatchName); err != nil {
		s.logger.Info("%s : watch '%s' not found, attempting to add it from configuration", s.Name, req.WatchName)

		watchConfig := s.config.GetWatchByName(req.WatchName)
		if watchConfig == nil {
			return &ControlResponse{
				Success:   false,
				Message:   fmt.Sprintf("Watch '%s' is not configured. Add it first.", req.WatchName),
				Timestamp: time.Now().Unix(),
				ErrorCode: "WATCH_NOT_FOUND",
			}, nil
		}

		if err := s.observer.AddWatch(watchConfig); err != nil {
			s.logger.Error("%s : failed to add watch %s: %v", s.Name, req.WatchName, err)
			return &ControlResponse{
				Success:   false,
				Message:   fmt.Sprintf("Failed to add watch: %v", err),
				Timestamp: time.Now().Unix(),
				ErrorCode: "ADD_WATCH_FAILED",
			}, nil
		}
	}

	// Start the watch in the observer
	if err := s.observer.StartWatcher(req.WatchName); err != nil {
		s.logger.Error("%s : failed to start watch %s: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to start watch: %v", err),
			Timestamp: time.Now().Unix(),
			ErrorCode: "START_WATCH_FAILED",
		}, nil
	}

	s.logger.Info("%s : watch '%s' started successfully", s.Name, req.WatchName)
	return &ControlResponse{
		Success:   true,
		Message:   fmt.Sprintf("Watch '%s' started successfully", req.WatchName),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// StopWatch implements the gRPC StopWatch method
func (s *ControlServiceImpl) StopWatch(ctx context.Context, req *StopWatchRequest) (*ControlResponse, error) {
	s.logger.Info("%s : received StopWatch request for %s", s.Name, req.WatchName)

	// Check if the watch exists and is running
	if status, err := s.observer.GetWatcherStatus(req.WatchName); err != nil {
		s.logger.Error("%s : watch %s not found: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Watch '%s' not found", req.WatchName),
			Timestamp: time.Now().Unix(),
			ErrorCode: "WATCH_NOT_FOUND",
		}, nil
	} else if !status.Running {
		// The watch exists but is already stopped
		s.logger.Info("%s : watch %s is already stopped", s.Name, req.WatchName)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Watch '%s' is already stopped", req.WatchName),
			Timestamp: time.Now().Unix(),
			ErrorCode: "WATCH_ALREADY_STOPPED",
		}, nil
	}

	// Stop the watch in the observer
	if err := s.observer.StopWatcher(req.WatchName); err != nil {
		s.logger.Error("%s : failed to stop watch %s: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to stop watch: %v", err),
			Timestamp: time.Now().Unix(),
			ErrorCode: "STOP_WATCH_FAILED",
		}, nil
	}

	s.logger.Info("%s : watch '%s' stopped successfully", s.Name, req.WatchName)
	return &ControlResponse{
		Success:   true,
		Message:   fmt.Sprintf("Watch '%s' stopped successfully", req.WatchName),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// ListWatchers implements the gRPC ListWatchers method
func (s *ControlServiceImpl) ListWatchers(ctx context.Context, req *ListWatchersRequest) (*ListWatchersResponse, error) {
	s.logger.Debug("%s : received ListWatchers request", s.Name)

	runningWatchers := make([]*WatcherInfo, 0)
	availableWatchers := make([]*WatcherInfo, 0)

	for _, name := range s.observer.ListWatchers() {
		status, err := s.observer.GetWatcherStatus(name)
		if err != nil {
			continue
		}

		info := &WatcherInfo{
			WatchName:     status.WatchName,
			Provider:      status.Provider,
			TransportType: status.TransportType,
			Network:       status.Network,
			Endpoint:      utils.MaskAPIKey(status.Endpoint),
			Running:       status.Running,
			StreamIDs:     status.StreamIDs,
			ViewCount:     int32(status.ViewCount),
			Status: func() string {
				if status.Running {
					return "Running"
				}
				return "Stopped"
			}(),
		}

		if status.Running {
			runningWatchers = append(runningWatchers, info)
		}
		// "Available" means every registered watch, started or not
		if req.IncludeStopped {
			availableWatchers = append(availableWatchers, info)
		}
	}

	return &ListWatchersResponse{
		RunningWatchers:   runningWatchers,
		AvailableWatchers: availableWatchers,
		TotalRunning:      int32(len(runningWatchers)),
		TotalAvailable:    int32(len(availableWatchers)),
		Timestamp:         time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// GetWatcherStatus implements the gRPC GetWatcherStatus method
func (s *ControlServiceImpl) GetWatcherStatus(ctx context.Context, req *GetWatcherStatusRequest) (*WatcherStatusResponse, error) {
	s.logger.Debug("%s : received GetWatcherStatus request for %s", s.Name, req.WatchName)

	// Get status directly from the observer
	status, err := s.observer.GetWatcherStatus(req.WatchName)
	if err != nil {
		s.logger.Error("%s : watch %s not found: %v", s.Name, req.WatchName, err)
		return &WatcherStatusResponse{
			WatchName:     req.WatchName,
			Running:       false,
			StatusMessage: "Not found",
		}, nil
	}

	// Convert observer status to gRPC response
	return &WatcherStatusResponse{
		WatchName:     status.WatchName,
		Running:       status.Running,
		Provider:      status.Provider,
		TransportType: status.TransportType,
		Network:       status.Network,
		Endpoint:      utils.MaskAPIKey(status.Endpoint),
		StreamIDs:     status.StreamIDs,
		ViewCount:     int32(status.ViewCount),
		StatusMessage: func() string {
			if status.Running {
				return "Running"
			}
			return "Stopped"
		}(),
	}, nil
}

// -----------------------------------------------------------------------------
// Stream Management
// -----------------------------------------------------------------------------

// AddStreams implements the gRPC AddStreams method
func (s *ControlServiceImpl) AddStreams(ctx context.Context, req *AddStreamsRequest) (*ControlResponse, error) {
	s.logger.Info("%s : received AddStreams request for watch %s: %v", s.Name, req.WatchName, req.StreamIDs)

	// Validate the watch exists. Tracking works on stopped watches too, the
	// fetch goes out once the watch starts.
	if _, err := s.observer.GetWatcherStatus(req.WatchName); err != nil {
		s.logger.Error("%s : watch %s not found: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Watch '%s' not found. Please add the watch first.", req.WatchName),
			Timestamp: time.Now().Unix(),
			ErrorCode: "WATCH_NOT_FOUND",
		}, nil
	}

	if err := s.observer.AddStreamsToWatch(req.WatchName, req.StreamIDs); err != nil {
		s.logger.Error("%s : failed to add streams to watch %s: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to add streams: %v", err),
			Timestamp: time.Now().Unix(),
			ErrorCode: "ADD_STREAMS_FAILED",
		}, nil
	}

	return &ControlResponse{
		Success:   true,
		Message:   fmt.Sprintf("Successfully added %d stream(s) to watch '%s'", len(req.StreamIDs), req.WatchName),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// RemoveStreams implements the gRPC RemoveStreams method
func (s *ControlServiceImpl) RemoveStreams(ctx context.Context, req *RemoveStreamsRequest) (*ControlResponse, error) {
	s.logger.Info("%s : received RemoveStreams request for watch %s: %v", s.Name, req.WatchName, req.StreamIDs)

	if _, err := s.observer.GetWatcherStatus(req.WatchName); err != nil {
		s.logger.Error("%s : watch %s not found: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Watch '%s' not found", req.WatchName),
			Timestamp: time.Now().Unix(),
			ErrorCode: "WATCH_NOT_FOUND",
		}, nil
	}

	if err := s.observer.RemoveStreamsFromWatch(req.WatchName, req.StreamIDs); err != nil {
		s.logger.Error("%s : failed to remove streams from watch %s: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to remove streams: %v", err),
			Timestamp: time.Now().Unix(),
			ErrorCode: "REMOVE_STREAMS_FAILED",
		}, nil
	}

	return &ControlResponse{
		Success:   true,
		Message:   fmt.Sprintf("Successfully removed %d stream(s) from watch '%s'", len(req.StreamIDs), req.WatchName),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// RefreshStreams implements the gRPC RefreshStreams method. An empty watch
// name refreshes every running watch.
func (s *ControlServiceImpl) RefreshStreams(ctx context.Context, req *RefreshStreamsRequest) (*ControlResponse, error) {
	s.logger.Info("%s : received RefreshStreams request for watch '%s'", s.Name, req.WatchName)

	if req.WatchName == "" {
		if err := s.observer.RefreshAllWatchers(); err != nil {
			s.logger.Error("%s : failed to refresh all watches: %v", s.Name, err)
			return &ControlResponse{
				Success:   false,
				Message:   fmt.Sprintf("Failed to refresh all watches: %v", err),
				Timestamp: time.Now().Unix(),
				ErrorCode: "REFRESH_FAILED",
			}, nil
		}

		return &ControlResponse{
			Success:   true,
			Message:   "Refresh triggered for all watches",
			Timestamp: time.Now().Unix(),
		}, nil
	}

	if err := s.observer.RefreshWatcher(req.WatchName); err != nil {
		s.logger.Error("%s : failed to refresh watch %s: %v", s.Name, req.WatchName, err)
		return &ControlResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to refresh watch: %v", err),
			Timestamp: time.Now().Unix(),
			ErrorCode: "REFRESH_FAILED",
		}, nil
	}

	return &ControlResponse{
		Success:   true,
		Message:   fmt.Sprintf("Refresh triggered for watch '%s'", req.WatchName),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------
// View Access
// -----------------------------------------------------------------------------

// ListViews implements the gRPC ListViews method
func (s *ControlServiceImpl) ListViews(ctx context.Context, req *ListViewsRequest) (*ListViewsResponse, error) {
	s.logger.Debug("%s : received ListViews request (watch filter: '%s')", s.Name, req.WatchName)

	var views []*models.MStreamView
	if req.WatchName == "" {
		views = s.observer.ListViews()
	} else {
		views = s.observer.ListViewsByWatch(req.WatchName)
	}

	messages := make([]*ViewMessage, 0, len(views))
	for _, view := range views {
		messages = append(messages, viewMessageFrom(view))
	}

	return &ListViewsResponse{
		Views:     messages,
		Total:     int32(len(messages)),
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// GetView implements the gRPC GetView method
func (s *ControlServiceImpl) GetView(ctx context.Context, req *GetViewRequest) (*GetViewResponse, error) {
	s.logger.Debug("%s : received GetView request for %s/%s", s.Name, req.Network, req.StreamID)

	view, ok := s.observer.GetView(req.Network, req.StreamID)
	if !ok {
		return &GetViewResponse{Found: false}, nil
	}

	return &GetViewResponse{
		Found: true,
		View:  viewMessageFrom(view),
	}, nil
}

// -----------------------------------------------------------------------------
// Health Check
// -----------------------------------------------------------------------------

// HealthCheck implements the gRPC HealthCheck method
func (s *ControlServiceImpl) HealthCheck(ctx context.Context, req *HealthCheckRequest) (*HealthCheckResponse, error) {
	s.logger.Debug("%s : received HealthCheck request for service %s", s.Name, req.ServiceName)

	// Check observer health
	isHealthy := true
	statusMessage := "All systems operational"
	details := make(map[string]string)

	details["observer"] = "Healthy"
	details["observer_name"] = s.observer.Name

	running := 0
	names := s.observer.ListWatchers()
	for _, name := range names {
		if status, err := s.observer.GetWatcherStatus(name); err == nil && status.Running {
			running++
		}
	}
	details["total_watchers"] = fmt.Sprintf("%d", len(names))
	details["running_watchers"] = fmt.Sprintf("%d", running)
	details["cached_views"] = fmt.Sprintf("%d", len(s.observer.ListViews()))

	return &HealthCheckResponse{
		Healthy:   isHealthy,
		Status:    statusMessage,
		Timestamp: time.Now().Unix(),
		Details:   details,
	}, nil
}
